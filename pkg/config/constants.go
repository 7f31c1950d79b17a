package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "RESTAUS_DB_DSN"
	EnvDBHost = "RESTAUS_DB_HOST"
	EnvDBUser = "RESTAUS_DB_USER"
	EnvDBName = "RESTAUS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
