package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 列表接口默认分页大小，与 Link 头分页配套
const DefaultPerPage = 10
