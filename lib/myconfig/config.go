package myconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken      string
	PublicBackendURL   string
	LocalBackendURL    string
	WebAppURL          string
	Port               string
	SuperAdminUsername string
	PaymentRefPrefix   string
	ConfirmDedup       bool
	LocalTimeout       time.Duration
	PublicTimeout      time.Duration
	BankName           string
	BankAccountNumber  string
	BankAccountName    string
	LogFormat          string
}

const (
	KeyTelegramToken      = "TELEGRAM_BOT_TOKEN"
	KeyPublicBackendURL   = "API_BASE"
	KeyLocalBackendURL    = "BACKEND_LOCAL_URL"
	KeyWebAppURL          = "WEB_APP_URL"
	KeyPort               = "PORT"
	KeySuperAdminUsername = "SUPER_ADMIN_USERNAME"
	KeyPaymentRefPrefix   = "PAYMENT_REF_PREFIX"
	KeyConfirmDedup       = "CONFIRM_DEDUP"
	KeyLocalTimeout       = "LOCAL_TIMEOUT"
	KeyPublicTimeout      = "PUBLIC_TIMEOUT"
	KeyBankName           = "BANK_NAME"
	KeyBankAccountNumber  = "BANK_ACCOUNT_NUMBER"
	KeyBankAccountName    = "BANK_ACCOUNT_NAME"
	KeyLogFormat          = "LOG_FORMAT"
)

// New returns a viper instance with defaults and environment binding. Values from envFile (when
// present) are loaded into the process environment first; variables already set win.
func New(envFile string) *viper.Viper {
	_ = LoadEnvFile(envFile)

	v := viper.New()
	v.SetDefault(KeyPublicBackendURL, "https://pss-backend.onrender.com")
	v.SetDefault(KeyLocalBackendURL, "http://127.0.0.1:5000")
	v.SetDefault(KeyWebAppURL, "https://pss-frontend.onrender.com")
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeySuperAdminUsername, "origichidiah")
	v.SetDefault(KeyPaymentRefPrefix, "PSS")
	v.SetDefault(KeyConfirmDedup, false)
	v.SetDefault(KeyLocalTimeout, 3*time.Second)
	v.SetDefault(KeyPublicTimeout, 15*time.Second)
	v.SetDefault(KeyBankName, "Moniepoint MFB")
	v.SetDefault(KeyBankAccountNumber, "0000000000")
	v.SetDefault(KeyBankAccountName, "Smart Shopping Ltd")
	v.SetDefault(KeyLogFormat, "text")
	v.AutomaticEnv()

	return v
}

// LoadEnvFile copies the variables of a dotenv file into the process environment. A missing file
// is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v. The telegram token is only required when requireToken is set.
func Load(v *viper.Viper, requireToken bool) (Config, error) {
	cfg := Config{
		TelegramToken:      strings.TrimSpace(v.GetString(KeyTelegramToken)),
		PublicBackendURL:   strings.TrimRight(v.GetString(KeyPublicBackendURL), "/"),
		LocalBackendURL:    strings.TrimRight(v.GetString(KeyLocalBackendURL), "/"),
		WebAppURL:          strings.TrimRight(v.GetString(KeyWebAppURL), "/"),
		Port:               v.GetString(KeyPort),
		SuperAdminUsername: strings.TrimPrefix(v.GetString(KeySuperAdminUsername), "@"),
		PaymentRefPrefix:   v.GetString(KeyPaymentRefPrefix),
		ConfirmDedup:       v.GetBool(KeyConfirmDedup),
		LocalTimeout:       v.GetDuration(KeyLocalTimeout),
		PublicTimeout:      v.GetDuration(KeyPublicTimeout),
		BankName:           v.GetString(KeyBankName),
		BankAccountNumber:  v.GetString(KeyBankAccountNumber),
		BankAccountName:    v.GetString(KeyBankAccountName),
		LogFormat:          v.GetString(KeyLogFormat),
	}

	if requireToken && cfg.TelegramToken == "" {
		return Config{}, fmt.Errorf("missing %s", KeyTelegramToken)
	}
	if cfg.PublicBackendURL == "" {
		return Config{}, fmt.Errorf("missing %s", KeyPublicBackendURL)
	}
	if cfg.PaymentRefPrefix == "" {
		return Config{}, fmt.Errorf("empty %s", KeyPaymentRefPrefix)
	}
	if cfg.LocalTimeout <= 0 || cfg.PublicTimeout <= 0 {
		return Config{}, fmt.Errorf("timeouts must be positive (local:%s, public:%s)", cfg.LocalTimeout, cfg.PublicTimeout)
	}

	return cfg, nil
}
