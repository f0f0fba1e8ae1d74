package updater

//go:generate mockgen -destination=./mocks/fetcher.go -package=mocks github.com/NethermindEth/geoipupdate/pkg/updater Fetcher
//go:generate mockgen -destination=./mocks/mirror.go -package=mocks github.com/NethermindEth/geoipupdate/pkg/updater Mirror
