package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// 培训二维码相关常量
const (
	QRCodePrefix     = "TRN-"
	QRCodeRandomLen  = 8
	QRImageSize      = 256
	QRImageMimeType  = "image/png"
	QRStorageDirName = "training-qr"
)

// MaxTrainingMinutes 学习时长上限，超出视为非法输入
const MaxTrainingMinutes = 1<<31 - 1
