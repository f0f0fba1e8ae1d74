package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const settingsSchema = "schema/settings_schema.yml"

//go:embed schema/*
var schemaFS embed.FS

type yamlSettings struct {
	AccountID         int      `yaml:"account_id"`
	LicenseKey        string   `yaml:"license_key"`
	EditionIDs        []string `yaml:"edition_ids"`
	DatabaseDirectory string   `yaml:"database_directory"`
	Host              string   `yaml:"host"`
	Proxy             string   `yaml:"proxy"`
	ProxyUserPassword string   `yaml:"proxy_user_password"`
	PreserveFileTimes bool     `yaml:"preserve_file_times"`
	LockFile          string   `yaml:"lock_file"`
	RetryFor          string   `yaml:"retry_for"`
	HTTPTimeout       string   `yaml:"http_timeout"`
	S3                *yamlS3  `yaml:"s3"`
}

type yamlS3 struct {
	Bucket                      string `yaml:"bucket"`
	Prefix                      string `yaml:"prefix"`
	Region                      string `yaml:"region"`
	Endpoint                    string `yaml:"endpoint"`
	AccessKeyID                 string `yaml:"access_key_id"`
	SecretAccessKey             string `yaml:"secret_access_key"`
	DisableServerSideEncryption bool   `yaml:"disable_server_side_encryption"`
}

// validateYAMLSchema checks document against the embedded settings schema.
func validateYAMLSchema(document []byte) error {
	schemaData, err := schemaFS.ReadFile(settingsSchema)
	if err != nil {
		return fmt.Errorf("error reading the schema file: %v", err)
	}

	// The schema is kept in YAML, gojsonschema wants JSON.
	var schemaYaml interface{}
	if err := yaml.Unmarshal(schemaData, &schemaYaml); err != nil {
		return fmt.Errorf("error deserializing the yaml schema: %v", err)
	}
	schemaJson, err := json.Marshal(schemaYaml)
	if err != nil {
		return fmt.Errorf("error serializing the schema to json: %v", err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(string(schemaJson)))
	if err != nil {
		return fmt.Errorf("error compiling the schema: %v", err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(document, &doc); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSchema, err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSchema, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidSchema, strings.Join(msgs, "; "))
	}
	return nil
}

func parseYAML(s *Settings, data []byte) error {
	if err := validateYAMLSchema(data); err != nil {
		return err
	}

	var y yamlSettings
	if err := yaml.Unmarshal(data, &y); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSchema, err)
	}

	s.AccountID = y.AccountID
	s.LicenseKey = y.LicenseKey
	s.EditionIDs = NewEditions(y.EditionIDs...)
	s.PreserveFileTimes = y.PreserveFileTimes
	s.proxyURL = y.Proxy
	s.proxyUserInfo = y.ProxyUserPassword
	if y.DatabaseDirectory != "" {
		s.DatabaseDirectory = filepath.Clean(y.DatabaseDirectory)
	}
	if y.Host != "" {
		s.Host = y.Host
	}
	if y.LockFile != "" {
		s.LockFile = filepath.Clean(y.LockFile)
	}

	var err error
	if y.RetryFor != "" {
		if s.RetryFor, err = parseDuration("retry_for", y.RetryFor); err != nil {
			return err
		}
	}
	if y.HTTPTimeout != "" {
		if s.HTTPTimeout, err = parseDuration("http_timeout", y.HTTPTimeout); err != nil {
			return err
		}
	}

	if y.S3 != nil {
		s.S3 = S3Settings{
			Bucket:                      y.S3.Bucket,
			Prefix:                      y.S3.Prefix,
			Region:                      y.S3.Region,
			Endpoint:                    y.S3.Endpoint,
			AccessKeyID:                 y.S3.AccessKeyID,
			SecretAccessKey:             y.S3.SecretAccessKey,
			DisableServerSideEncryption: y.S3.DisableServerSideEncryption,
		}
	}
	return nil
}
