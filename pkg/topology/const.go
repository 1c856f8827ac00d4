package topology

const (
	ROLE_PM = "pm"
	ROLE_UM = "um"

	ROLE_PRIMARY_PM   = "pm1"
	ROLE_SECONDARY_PM = "pm2"
	ROLE_PRIMARY_UM   = "um1"
)

const (
	REASON_NO_VALID_HOSTS = "No valid hosts"
)
