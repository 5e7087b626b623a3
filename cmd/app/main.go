package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"keyhub/config"
	"keyhub/internal/command"
	"keyhub/internal/log"
	"keyhub/utils/path"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	_ "keyhub/cmd/docs"
)

var (
	rootPath  = path.RootPath()
	Version   string
	envPath   string
	yamlPath  string
	conf      *config.Configuration
	configErr error
	logger    *zap.Logger
)

func init() {
	pflag.StringVarP(&envPath, "env", "e", "", "Environment file, e.g. --env .env")
	pflag.StringVarP(&yamlPath, "config", "c", "", "YAML config file, e.g. --config config.yaml")

	cobra.OnInitialize(func() {
		if envPath != "" && yamlPath != "" {
			fmt.Println("同時指定 --env 與 --config，將以 --env 優先")
		}
		initConfig()
	})
}

// @title        keyhub API
// @version      1.0
// @description  授權 key 發放、驗證與執行紀錄 API
// @host         localhost:3000
// @basePath     /

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
// @description 請在欄位輸入 "Bearer {token}"

// @securityDefinitions.apikey BotToken
// @in   header
// @name X-Bot-Token
func main() {
	rootCmd := &cobra.Command{
		Use:           "app",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return configErr
			}
			if conf == nil {
				conf = &config.Configuration{}
			}
			// -ldflags "-X main.Version=..." 覆寫未設定的版本
			if conf.App.Version == "" {
				conf.App.Version = Version
			}
			var err error
			if logger, err = log.NewLogger(conf); err != nil {
				return fmt.Errorf("init logger failed: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := wireApp(conf, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			logger.Info("start app ...")
			if err := app.Run(); err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info("shutdown app ...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			return app.Stop(ctx)
		},
	}

	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	command.Register(rootCmd, func() (*command.Command, func(), error) {
		return wireCommand(conf, logger)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig 以 "__" 對應巢狀欄位，例如 REDIS__HOST；指定檔案時會監看變更並即時套用 log level
func initConfig() {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()
	bindEnvs(v, reflect.TypeOf(config.Configuration{}))

	file, kind := "", ""
	switch {
	case envPath != "":
		file, kind = path.Resolve(rootPath, envPath), "env"
	case yamlPath != "":
		file, kind = path.Resolve(filepath.Join(rootPath, "conf"), yamlPath), "yaml"
	}
	if file == "" {
		fmt.Println("no config file specified, using environment variables only")
	} else {
		if ok, err := path.Exists(file); !ok {
			configErr = fmt.Errorf("config file %s not found: %v", file, err)
			return
		}
		fmt.Printf("load %s config: %s\n", kind, file)
		v.SetConfigFile(file)
		v.SetConfigType(kind)
		if err := v.ReadInConfig(); err != nil {
			configErr = fmt.Errorf("read config failed: %w", err)
			return
		}
		v.OnConfigChange(func(in fsnotify.Event) {
			fmt.Println("config file changed:", in.Name)
			if err := v.Unmarshal(&conf); err != nil {
				fmt.Println("unmarshal on change failed:", err)
				return
			}
			log.ApplyLevel(conf.Log.Level)
		})
		v.WatchConfig()
	}

	if err := v.Unmarshal(&conf); err != nil {
		configErr = fmt.Errorf("unmarshal config failed: %w", err)
	}
}

// bindEnvs 讓 AutomaticEnv 也能套用到 Unmarshal 的每個葉節點
func bindEnvs(v *viper.Viper, t reflect.Type, prefix ...string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			name = field.Name
		}
		keyPath := append(append([]string{}, prefix...), name)
		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			bindEnvs(v, ft, keyPath...)
			continue
		}
		_ = v.BindEnv(strings.Join(keyPath, "__"))
	}
}
