package env

import (
	"os"
)

const (
	AWSRegion         = "AWS_REGION"
	AWSID             = "AWS_ID"
	AWSSecret         = "AWS_SECRET"
	AWSToken          = "AWS_TOKEN"
	DynamoDBEndpoint  = "DYNAMODB_ENDPOINT"
	CustomerSecretKey = "CUSTOMER_SECRET"
	AgentSecretKey    = "AGENT_SECRET"
	AuthRedisURL      = "AUTH_REDIS_URL"
	AuthRedisPass     = "AUTH_REDIS_PASS"
	EventsRedisURL    = "EVENTS_REDIS_URL"
	EventsRedisPass   = "EVENTS_REDIS_PASS"
	SignalServiceURL  = "SIGNAL_SERVICE_URL"
	TranslatorURL     = "TRANSLATOR_URL"
	WebUrl            = "WEB_URL"
)

func init() {
	required := []string{
		AWSRegion,
		AWSID,
		AWSSecret,
		CustomerSecretKey,
		AgentSecretKey,
		AuthRedisURL,
		EventsRedisURL,
		SignalServiceURL,
		TranslatorURL,
		WebUrl,
	}
	for _, key := range required {
		if os.Getenv(key) == "" {
			panic("env: required environment variable not set: " + key)
		}
	}
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
