package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/pedidofacil/pedidofacil/internal/authorization"
	"github.com/pedidofacil/pedidofacil/internal/config"
	"github.com/pedidofacil/pedidofacil/internal/invoice"
	invoicedomain "github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	"github.com/pedidofacil/pedidofacil/internal/metrics"
	"github.com/pedidofacil/pedidofacil/internal/order"
	orderdomain "github.com/pedidofacil/pedidofacil/internal/order/domain"
	"github.com/pedidofacil/pedidofacil/internal/user"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	metrics.Module,
	fx.Provide(registerGin),
	authorization.Module,
	user.Module,
	order.Module,
	invoice.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	userSvc    userdomain.Service
	orderSvc   orderdomain.Service
	invoiceSvc invoicedomain.Service
	authzSvc   authorization.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	UserSvc    userdomain.Service
	OrderSvc   orderdomain.Service
	InvoiceSvc invoicedomain.Service
	AuthzSvc   authorization.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		userSvc:    p.UserSvc,
		orderSvc:   p.OrderSvc,
		invoiceSvc: p.InvoiceSvc,
		authzSvc:   p.AuthzSvc,
	}

	svc.registerUserRoutes()
	svc.registerOrderRoutes()
	svc.registerInvoiceRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerUserRoutes() {
	users := s.engine.Group("/api/users")

	users.POST("/register", s.Register)
	users.POST("/login", s.Login)
	users.POST("/logout", s.AuthRequired(), s.Logout)
	users.GET("/profile", s.AuthRequired(), s.GetProfile)
	users.PUT("/profile", s.AuthRequired(), s.UpdateProfile)

	admin := users.Group("", s.AuthRequired())
	admin.GET("", s.RequireAuthorization(authorization.ObjectUser, authorization.ActionUserView), s.ListUsers)
	admin.GET("/:id", s.RequireAuthorization(authorization.ObjectUser, authorization.ActionUserView), s.GetUserByID)
	admin.PUT("/:id", s.RequireAuthorization(authorization.ObjectUser, authorization.ActionUserUpdate), s.UpdateUser)
	admin.DELETE("/:id", s.RequireAuthorization(authorization.ObjectUser, authorization.ActionUserDelete), s.DeleteUser)
}

func (s *Server) registerOrderRoutes() {
	orders := s.engine.Group("/api/orders", s.AuthRequired())

	orders.GET("/stats", s.RequireAuthorization(authorization.ObjectStats, authorization.ActionStatsView), s.OrderStats)
	orders.GET("", s.RequireAuthorization(authorization.ObjectOrder, authorization.ActionOrderView), s.ListOrders)
	orders.POST("", s.RequireAuthorization(authorization.ObjectOrder, authorization.ActionOrderCreate), s.CreateOrder)
	orders.GET("/:id", s.RequireAuthorization(authorization.ObjectOrder, authorization.ActionOrderView), s.GetOrderByID)
	orders.PUT("/:id", s.RequireAuthorization(authorization.ObjectOrder, authorization.ActionOrderUpdate), s.UpdateOrder)
	orders.DELETE("/:id", s.RequireAuthorization(authorization.ObjectOrder, authorization.ActionOrderDelete), s.DeleteOrder)
}

func (s *Server) registerInvoiceRoutes() {
	invoices := s.engine.Group("/api/invoices", s.AuthRequired())

	invoices.GET("/stats", s.RequireAuthorization(authorization.ObjectStats, authorization.ActionStatsView), s.InvoiceStats)
	invoices.GET("", s.RequireAuthorization(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.ListInvoices)
	invoices.POST("", s.RequireAuthorization(authorization.ObjectInvoice, authorization.ActionInvoiceCreate), s.CreateInvoice)
	invoices.GET("/:id", s.RequireAuthorization(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.GetInvoiceByID)
	invoices.PUT("/:id", s.RequireAuthorization(authorization.ObjectInvoice, authorization.ActionInvoiceUpdate), s.UpdateInvoice)
	invoices.PATCH("/:id/issue", s.RequireAuthorization(authorization.ObjectInvoice, authorization.ActionInvoiceIssue), s.IssueInvoice)
	invoices.PATCH("/:id/cancel", s.RequireAuthorization(authorization.ObjectInvoice, authorization.ActionInvoiceCancel), s.CancelInvoice)
	invoices.PATCH("/:id/pay", s.RequireAuthorization(authorization.ObjectInvoice, authorization.ActionInvoicePay), s.PayInvoice)
}
