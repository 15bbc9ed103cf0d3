package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ReminderSettings controls the bid end-date reminder job.
type ReminderSettings struct {
	Enabled    bool     `mapstructure:"enabled"`
	Hour       int      `mapstructure:"hour"`
	Minute     int      `mapstructure:"minute"`
	DaysAhead  int      `mapstructure:"daysAhead"`
	Recipients []string `mapstructure:"recipients"`
	// SubjectPrefix is prepended to every reminder subject when set.
	SubjectPrefix string `mapstructure:"subjectPrefix"`
}

func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		Enabled:   true,
		Hour:      3,
		Minute:    30,
		DaysAhead: 1,
	}
}

type ReminderSettingsHolder struct {
	current atomic.Value // holds ReminderSettings
}

// NewReminderSettingsHolder reads reminder.yml from cfg.SettingsPath and
// keeps it current while the process runs.
func NewReminderSettingsHolder(cfg Config, log *zap.Logger) (*ReminderSettingsHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("reminder.settings")

	v := viper.New()
	v.SetConfigName("reminder")
	v.SetConfigType("yml")
	v.AddConfigPath(cfg.SettingsPath)
	v.AddConfigPath("/etc/crm")

	v.SetEnvPrefix("CRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReminderSettings()
	if len(cfg.Email.To) > 0 {
		defaults.Recipients = cfg.Email.To
	}
	v.SetDefault("reminder.enabled", defaults.Enabled)
	v.SetDefault("reminder.hour", defaults.Hour)
	v.SetDefault("reminder.minute", defaults.Minute)
	v.SetDefault("reminder.daysAhead", defaults.DaysAhead)
	v.SetDefault("reminder.recipients", defaults.Recipients)
	v.SetDefault("reminder.subjectPrefix", defaults.SubjectPrefix)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	settings, err := decodeReminderSettings(v)
	if err != nil {
		return nil, err
	}
	if err := validateReminderSettings(settings); err != nil {
		return nil, err
	}

	holder := &ReminderSettingsHolder{}
	holder.current.Store(settings)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeReminderSettings(v)
			if err != nil {
				log.Warn("reload failed", zap.Error(err))
				return
			}
			if err := validateReminderSettings(updated); err != nil {
				log.Warn("invalid settings ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

// NewStaticReminderSettings wraps fixed settings, for tests and one-shot runs.
func NewStaticReminderSettings(settings ReminderSettings) *ReminderSettingsHolder {
	holder := &ReminderSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func (h *ReminderSettingsHolder) Get() ReminderSettings {
	return h.current.Load().(ReminderSettings)
}

// decodeReminderSettings goes through Unmarshal so defaults fill keys the
// file leaves out.
func decodeReminderSettings(v *viper.Viper) (ReminderSettings, error) {
	var wrapper struct {
		Reminder ReminderSettings `mapstructure:"reminder"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return ReminderSettings{}, err
	}
	return wrapper.Reminder, nil
}

func validateReminderSettings(s ReminderSettings) error {
	if s.Hour < 0 || s.Hour > 23 {
		return errors.New("reminder.hour must be within 0-23")
	}
	if s.Minute < 0 || s.Minute > 59 {
		return errors.New("reminder.minute must be within 0-59")
	}
	if s.DaysAhead < 0 {
		return errors.New("reminder.daysAhead cannot be negative")
	}
	return nil
}
