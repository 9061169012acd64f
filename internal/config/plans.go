package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Plan describes a subscription tier and its invoice credit allowance.
type Plan struct {
	Code          string  `mapstructure:"code" json:"code"`
	Name          string  `mapstructure:"name" json:"name"`
	Credits       int     `mapstructure:"credits" json:"credits"`
	Unlimited     bool    `mapstructure:"unlimited" json:"unlimited"`
	MonthlyAmount float64 `mapstructure:"monthlyAmount" json:"monthly_amount"`
	Currency      string  `mapstructure:"currency" json:"currency"`
}

type PlanCatalog struct {
	Plans []Plan `mapstructure:"plans"`
}

const DefaultPlanCode = "free"

func DefaultPlanCatalog() PlanCatalog {
	return PlanCatalog{
		Plans: []Plan{
			{Code: "free", Name: "Free", Credits: 5, Currency: "GEL"},
			{Code: "starter", Name: "Starter", Credits: 50, MonthlyAmount: 15, Currency: "GEL"},
			{Code: "pro", Name: "Pro", Credits: 200, MonthlyAmount: 39, Currency: "GEL"},
			{Code: "unlimited", Name: "Unlimited", Unlimited: true, MonthlyAmount: 79, Currency: "GEL"},
		},
	}
}

// PlanCatalogHolder keeps the active plan catalog and hot-reloads it when the
// mounted config file changes.
type PlanCatalogHolder struct {
	current atomic.Value // holds PlanCatalog
}

func NewPlanCatalogHolder(log *zap.Logger) (*PlanCatalogHolder, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/invora/config")
	v.AddConfigPath("/etc/invora")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INVORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PlanCatalogHolder{}

	load := func() PlanCatalog {
		var catalog PlanCatalog
		if err := v.UnmarshalKey("billing", &catalog); err != nil || len(catalog.Plans) == 0 {
			return DefaultPlanCatalog()
		}
		return catalog
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultPlanCatalog())
	} else {
		holder.current.Store(load())
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.current.Store(load())
			log.Info("plan catalog reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

func (h *PlanCatalogHolder) Current() PlanCatalog {
	if catalog, ok := h.current.Load().(PlanCatalog); ok {
		return catalog
	}
	return DefaultPlanCatalog()
}

// Lookup returns the plan for a code, falling back to the free tier.
func (h *PlanCatalogHolder) Lookup(code string) (Plan, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, plan := range h.Current().Plans {
		if plan.Code == code {
			return plan, true
		}
	}
	return Plan{}, false
}
