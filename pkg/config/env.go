package config

// EnvPrefix namespaces every environment variable the backend reads.
const EnvPrefix = "CASAGRANDE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CASAGRANDE_DB_DSN"
	EnvDBHost = "CASAGRANDE_DB_HOST"
	EnvDBUser = "CASAGRANDE_DB_USER"
	EnvDBName = "CASAGRANDE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
