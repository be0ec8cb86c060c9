package config

// GenerateSampleConfig returns a commented TOML config matching DefaultConfig
func GenerateSampleConfig() string {
	return `# tally configuration

# Time zone used for day boundaries (IANA name such as "Europe/Berlin", or "Local")
timezone = "Local"

[insights]
# Days of history fetched for analysis (minimum 14)
window_days = 90
# Billable hours per day that count as full utilization
target_daily_hours = 6.0
# Maximum number of insights returned
max_insights = 20
# Drop insights that repeat a title within the same category
dedupe = true
# Timeout for each call to the generator
task_timeout = "45s"

[generator]
# "openai" for any OpenAI-compatible endpoint, "disabled" to skip generation
provider = "openai"
# base_url = "https://api.openai.com/v1"
model = "gpt-4o-mini"
temperature = 0.3
max_tokens = 2000
# Environment variable holding the API key (also read from .env)
api_key_env = "OPENAI_API_KEY"
max_retries = 2

[store]
# "jsonl", "sqlite3" or "postgres"
driver = "jsonl"
# dsn = "file:tally.db"
# Directory holding entries.jsonl, clients.jsonl and projects.jsonl
# data_dir = ""

[server]
addr = ":8080"
# Set to enable the Redis response cache
# redis_addr = "localhost:6379"
cache_ttl = "10m"

[log]
# debug, info, warn or error
level = "info"
# text or json
format = "text"
`
}
