package gateway

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"invoice-accrual/internal/domain"
)

// EngineConfig holds the policy settings of the reconciliation engine.
type EngineConfig struct {
	TargetCurrency  string `mapstructure:"target_currency"`
	Period          string `mapstructure:"period"`
	Simplify        bool   `mapstructure:"simplify"`
	BankFeesAccount int    `mapstructure:"bank_fees_account"`
	PrimaryAccounts []int  `mapstructure:"primary_accounts"`
}

// Config is the full configuration file: engine settings plus the two
// account tables and the coupon catalog.
type Config struct {
	Engine   EngineConfig            `mapstructure:"engine"`
	Accounts domain.AccountDirectory `mapstructure:"accounts"`
	Coupons  []domain.Coupon         `mapstructure:"coupons"`
}

// Catalog wraps the configured coupon list into the typed catalog the
// engine consumes.
func (c Config) Catalog() *domain.CouponCatalog {
	return &domain.CouponCatalog{Coupons: c.Coupons}
}

// LoadConfig reads configuration from the given file (JSON, YAML or TOML by
// extension). Env var overrides use the ACCRUALGEN_ prefix. The account
// tables are validated before the config is returned: a bad rate or account
// number must fail at startup, not mid-batch.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("engine.target_currency", "SEK")
	v.SetDefault("engine.period", "MONTHLY")
	v.SetDefault("engine.simplify", false)
	v.SetDefault("engine.bank_fees_account", 6570)
	v.SetDefault("engine.primary_accounts", []int{1580, 1780, 6570})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("accrualgen")
	}

	v.SetEnvPrefix("ACCRUALGEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Accounts.VAT == nil || c.Accounts.Sales == nil {
		return Config{}, fmt.Errorf("config %s: both accounts.vat and accounts.sales tables are required", v.ConfigFileUsed())
	}
	if err := c.Accounts.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate account tables: %w", err)
	}
	return c, nil
}

// decimalDecodeHook converts config scalars (strings or numbers) into
// decimal.Decimal fields.
func decimalDecodeHook() mapstructure.DecodeHookFunc {
	decimalType := reflect.TypeOf(decimal.Decimal{})
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != decimalType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(v)
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		default:
			return data, nil
		}
	}
}
