package main

import (
	"QueueBot/config"
	"QueueBot/internal/auth"
	"QueueBot/internal/bot"
	"QueueBot/internal/dispatch"
	"QueueBot/internal/matchmaker"
	"QueueBot/internal/middleware"
	"QueueBot/internal/storage"
	"QueueBot/internal/utils"
	"QueueBot/internal/websocket"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "path to config file")
	issueFor := flag.String("issue-token", "", "print an admin JWT for the given subject and exit")
	flag.Parse()

	if err := config.Load(*cfgPath); err != nil {
		utils.Log.Fatal("config", "err", err)
	}
	utils.Init(config.C.Log.Level)

	if *issueFor != "" {
		tok, err := auth.IssueToken([]byte(config.C.JWT.Secret), *issueFor, auth.RoleAdmin, 30*24*time.Hour)
		if err != nil {
			utils.Log.Fatal("issue token", "err", err)
		}
		fmt.Println(tok)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//-------------------------------------------------------
	// 1. 队列目录 + 核心状态
	//-------------------------------------------------------
	catalog, err := config.C.Catalog()
	if err != nil {
		utils.Log.Fatal("catalog", "err", err)
	}
	fee, err := config.C.FeeAmount()
	if err != nil {
		utils.Log.Fatal("fee", "err", err)
	}

	//-------------------------------------------------------
	// 2. 事件出口：看板 Hub + 可选 Redis
	//-------------------------------------------------------
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Close()

	publishers := []matchmaker.Publisher{matchmaker.NewHubPublisher(hub)}
	if addr := config.C.Redis.Addr; addr != "" {
		rdb, err := storage.NewRedis(ctx, addr, config.C.Redis.Password, config.C.Redis.DB)
		if err != nil {
			utils.Log.Fatal("redis", "err", err)
		}
		defer rdb.Close()
		publishers = append(publishers, matchmaker.NewRedisPublisher(rdb, config.C.Redis.Channel))
	}

	svc := matchmaker.NewService(
		matchmaker.NewRegistry(catalog),
		matchmaker.NewRotation(),
		fee,
		matchmaker.NewMultiPublisher(publishers...),
	)
	dispatcher := dispatch.NewDispatcher(svc)
	utils.Log.Info("queues ready", "modes", len(catalog.Modes()), "stakes", len(catalog.Stakes()), "fee", fee.StringFixed(2))

	//-------------------------------------------------------
	// 3. Discord（登录失败只记日志，HTTP 继续服务）
	//-------------------------------------------------------
	discord, err := bot.Open(ctx, config.C.Discord.Token, dispatcher, catalog, config.C.Discord.Prefix)
	if err != nil {
		utils.Log.Error("discord rejected login", "err", err)
	} else {
		defer discord.Close()
	}

	//-------------------------------------------------------
	// 4. Gin：状态接口 + 看板 WebSocket
	//-------------------------------------------------------
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", websocket.ServeWS(hub))

	matchmaker.NewHandler(svc).Register(r, middleware.JwtAuthMiddleware([]byte(config.C.JWT.Secret)))

	srv := &http.Server{Addr: config.C.Server.Port, Handler: r}
	go func() {
		utils.Log.Info("http server running", "addr", config.C.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Error("http server", "err", err)
			stop()
		}
	}()

	//-------------------------------------------------------
	// 5. 等待退出信号
	//-------------------------------------------------------
	<-ctx.Done()
	utils.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Log.Error("http shutdown", "err", err)
	}
}
