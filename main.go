package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bazaarpanel/bazaar/config"
	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/logger"
	redisutil "github.com/bazaarpanel/bazaar/util/redis"
	"github.com/bazaarpanel/bazaar/web"
	"github.com/bazaarpanel/bazaar/web/global"
	"github.com/bazaarpanel/bazaar/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func initLogger() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	initLogger()

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close db err:", err)
		}
	}()

	if err := redisutil.Init(config.GetRedisAddr(), os.Getenv("BAZAAR_REDIS_PASSWORD"), 0); err != nil {
		logger.Warning("redis init err:", err)
	}
	defer redisutil.Close()

	server := web.NewServer()
	global.SetWebServer(server)
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("restarting web server ...")
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			global.SetWebServer(server)
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			_ = server.Stop()
			return
		}
	}
}

func resetSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	err = settingService.ResetSettings()
	if err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	port, err := settingService.GetPort()
	if err != nil {
		fmt.Println("get current port failed, error info:", err)
	}
	userService := service.UserService{}
	userModel, err := userService.GetFirstUser()
	if err != nil {
		fmt.Println("get current user info failed, error info:", err)
		return
	}
	fmt.Println("current panel settings as follows:")
	fmt.Println("email:", userModel.Email)
	fmt.Println("port:", port)
}

func updateSetting(port int, email string, password string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}

	if port > 0 {
		err := settingService.SetPort(port)
		if err != nil {
			fmt.Println("set port failed:", err)
		} else {
			fmt.Printf("set port %v success\n", port)
		}
	}
	if email != "" || password != "" {
		userService := service.UserService{}
		err := userService.UpdateFirstUser(email, password)
		if err != nil {
			fmt.Println("set email and password failed:", err)
		} else {
			fmt.Println("set email and password success")
		}
	}
}

func updateTgbotSetting(tgBotToken string, tgBotChatId string, enable bool) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}

	if tgBotToken != "" {
		if err := settingService.SetTgBotToken(tgBotToken); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("set tgbot token success")
	}
	if tgBotChatId != "" {
		if err := settingService.SetTgBotChatId(tgBotChatId); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("set tgbot chat id success")
	}
	if err := settingService.SetTgbotEnabled(enable); err != nil {
		fmt.Println(err)
		return
	}
}

func runKycCleanup() {
	initLogger()

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	kycService := service.KycService{}
	result, err := kycService.ReconcileOrphans()
	if err != nil {
		fmt.Println("kyc cleanup failed:", err)
		return
	}
	fmt.Printf("kyc cleanup done: scanned %d, deleted %d\n", result.Scanned, result.Deleted)
}

func main() {
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use: "bazaar",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var kycCleanupCmd = &cobra.Command{
		Use:   "kyc-cleanup",
		Short: "Delete KYC records whose owning user no longer exists",
		Run: func(cmd *cobra.Command, args []string) {
			runKycCleanup()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Set settings",
	}

	var resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetInt("port")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			updateSetting(port, email, password)
		},
	}

	updateCmd.Flags().Int("port", 0, "set panel port")
	updateCmd.Flags().String("email", "", "set login email")
	updateCmd.Flags().String("password", "", "set login password")

	var tgbotCmd = &cobra.Command{
		Use:   "tgbot",
		Short: "Update telegram bot settings",
		Run: func(cmd *cobra.Command, args []string) {
			tgBotToken, _ := cmd.Flags().GetString("tgbottoken")
			tgBotChatId, _ := cmd.Flags().GetString("tgbotchatid")
			enable, _ := cmd.Flags().GetBool("enabletgbot")
			updateTgbotSetting(tgBotToken, tgBotChatId, enable)
		},
	}

	tgbotCmd.Flags().String("tgbottoken", "", "set telegram bot token")
	tgbotCmd.Flags().String("tgbotchatid", "", "set telegram bot chat ids (comma separated)")
	tgbotCmd.Flags().Bool("enabletgbot", false, "enable telegram bot notifications")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd)
	rootCmd.AddCommand(runCmd, kycCleanupCmd, settingCmd, tgbotCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
