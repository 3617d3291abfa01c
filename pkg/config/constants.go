package config

// EnvPrefix is the envconfig prefix applied to every variable.
const EnvPrefix = "arscode"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ARSCODE_DB_DSN"
	EnvDBHost = "ARSCODE_DB_HOST"
	EnvDBUser = "ARSCODE_DB_USER"
	EnvDBName = "ARSCODE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
