package locker

//go:generate mockgen -destination=./mocks/locker.go -package=mocks github.com/NethermindEth/geoipupdate/internal/locker Locker
