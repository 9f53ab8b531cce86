package config

type StorageConfig interface {
	GetStorageDriver() string
	GetDataFolder() string
	GetStorageKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisPrefix() string
}

const (
	StorageDriverFile   = "file"
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStorageDriver() string {
	return GetEnv("STORAGE_DRIVER", StorageDriverFile)
}

func (Storage) GetDataFolder() string {
	return GetEnv("DATA_FOLDER", "./data")
}

// GetStorageKey is a hex encoded 32 byte key; when set, file storage seals values
func (Storage) GetStorageKey() string {
	return GetEnv("STORAGE_KEY", "")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "portal")
}
