package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Addr     string   `koanf:"addr"`
	Database Database `koanf:"db"`
	Redis    Redis    `koanf:"redis"`
	Auth     Auth     `koanf:"auth"`
	Google   Google   `koanf:"google"`
	Cors     Cors     `koanf:"cors"`
	Limits   Limits   `koanf:"limits"`
}

type Database struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Pass     string `koanf:"pass"`
	Name     string `koanf:"name"`
	Schema   string `koanf:"schema"`
	MaxConns int32  `koanf:"maxconns"`
	MinConns int32  `koanf:"minconns"`
}

// Redis is optional. When Addr is empty an in-process cache is used instead.
type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type Auth struct {
	// JwtSecret signs the access tokens issued for password protected public plans.
	JwtSecret      string        `koanf:"jwtsecret"`
	PublicTokenTTL time.Duration `koanf:"publictokenttl"`
	// EnvAdmins lists user uids that may edit every plan.
	EnvAdmins []string `koanf:"envadmins"`
	// UnlockAttempts is the number of wrong share passwords tolerated per slug and client within UnlockWindow.
	UnlockAttempts int           `koanf:"unlockattempts"`
	UnlockWindow   time.Duration `koanf:"unlockwindow"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Cors struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type Limits struct {
	// FreePlans is the number of plans a non-premium user may own.
	FreePlans int `koanf:"freeplans"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Addr: ":8181",
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "tripkas",
			Pass:     "",
			Name:     "tripkas",
			Schema:   "tripkas",
			MaxConns: 25,
			MinConns: 5,
		},
		Auth: Auth{
			PublicTokenTTL: 12 * time.Hour,
			UnlockAttempts: 5,
			UnlockWindow:   15 * time.Minute,
		},
		Cors: Cors{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Limits: Limits{
			FreePlans: 3,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "TRIPKAS_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "TRIPKAS_")), "_", ".")
			// comma separated lists
			if strings.Contains(v, ",") {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
