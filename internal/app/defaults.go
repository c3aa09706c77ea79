package app

// defaults fill in keys the config file leaves out. Secrets have no default.
var defaults = map[string]any{
	"app.tz":                                      "Asia/Jakarta",
	"app.server.max_goroutine":                    0,
	"app.server.http.address":                     ":8080",
	"app.server.http.read_timeout_seconds":        15,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       30,
	"app.server.http.idle_timeout_seconds":        60,
	"app.server.ip_allowlist":                     "127.0.0.1,localhost",
	"app.server.trusted_proxies":                  "",
	"app.server.rate_limit.rps":                   1,
	"app.server.rate_limit.burst":                 5,

	"instrument.enabled":                 false,
	"instrument.service_name":            "memberauth",
	"instrument.log_level":               "info",
	"instrument.log_mask_fields":         "otp_code,authorization,access_token,token",
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 60,

	"jwt.issuer":    "memberauth",
	"jwt.audiences": "iai-member",
	"jwt.ttl_days":  7,

	"cache.driver":                     "memory",
	"cache.connect_retries":            5,
	"cache.redis.ping_timeout_seconds": 5,
	"cache.memory.janitor_seconds":     60,

	"messaging.driver":                      "noop",
	"messaging.nats.name":                   "memberauth",
	"messaging.nats.max_reconnects":         60,
	"messaging.nats.reconnect_wait_seconds": 2,

	"modules.member.enabled":                  true,
	"modules.member.otp_ttl_seconds":          600,
	"modules.member.max_attempts":             3,
	"modules.member.max_payment_gap_years":    4,
	"modules.member.verifier.driver":          "remote",
	"modules.member.verifier.url":             "https://ext-api.iai.or.id/otorisasi_otp.php",
	"modules.member.verifier.users_url":       "https://ext-api.iai.or.id/users",
	"modules.member.verifier.timeout_seconds": 5,
}
