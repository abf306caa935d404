package config

// NotifyConfig holds the Twilio credentials used to text guests when the
// status of their booking changes.  When any field is empty, SMS is
// disabled and notifications are only logged.
type NotifyConfig struct {
    AccountSID string
    AuthToken  string
    FromNumber string
}

// Enabled reports whether all credentials are present.
func (n NotifyConfig) Enabled() bool {
    return n.AccountSID != "" && n.AuthToken != "" && n.FromNumber != ""
}

func LoadNotifyConfig() NotifyConfig {
    return NotifyConfig{
        AccountSID: getenv("TWILIO_ACCOUNT_SID", ""),
        AuthToken:  getenv("TWILIO_AUTH_TOKEN", ""),
        FromNumber: getenv("TWILIO_FROM_NUMBER", ""),
    }
}
