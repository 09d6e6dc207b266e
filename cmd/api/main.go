package main

import (
	"log/slog"
	"os"

	"bookstore/internal/config"
	"bookstore/internal/domain/model"
	"bookstore/internal/handler"
	"bookstore/internal/infra/db"
	"bookstore/internal/infra/payment"
	infraRepo "bookstore/internal/infra/repository"
	"bookstore/internal/metrics"
	"bookstore/internal/notification"
	"bookstore/internal/server"
	"bookstore/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file, relying on process env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.Connect()
	if err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.Book{},
		&model.Address{},
		&model.ShippingProvider{},
		&model.CartItem{},
		&model.Voucher{},
		&model.VoucherUsage{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusHistory{},
		&model.Payment{},
		&model.UserBook{},
	); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	bookRepo := infraRepo.NewBookGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	voucherRepo := infraRepo.NewVoucherGormRepository(gormDB)
	voucherUsageRepo := infraRepo.NewVoucherUsageGormRepository(gormDB)
	userBookRepo := infraRepo.NewUserBookGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	shippingRepo := infraRepo.NewShippingProviderGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	m := metrics.NewCheckoutMetrics()

	queue := notification.NewQueue(256, 3, func(job notification.Job) error {
		log.Info("notification dispatched", "job_id", job.ID, "type", job.Type, "payload", job.Payload)
		return nil
	}, log)
	queue.Start()
	defer queue.Stop()

	var gateways []payment.Gateway
	if cfg.VNPay.Enabled() {
		gateways = append(gateways, payment.NewVNPayGateway(payment.VNPayConfig{
			TmnCode:    cfg.VNPay.TmnCode,
			HashSecret: cfg.VNPay.HashSecret,
			PayURL:     cfg.VNPay.PayURL,
			ReturnURL:  cfg.VNPay.ReturnURL,
		}))
	}
	if cfg.Momo.Enabled() {
		gateways = append(gateways, payment.NewMomoGateway(payment.MomoConfig{
			PartnerCode: cfg.Momo.PartnerCode,
			AccessKey:   cfg.Momo.AccessKey,
			SecretKey:   cfg.Momo.SecretKey,
			Endpoint:    cfg.Momo.Endpoint,
			RedirectURL: cfg.Momo.RedirectURL,
			IPNURL:      cfg.Momo.IPNURL,
		}))
	}

	voucherUC := usecase.NewVoucherUsecase(voucherRepo, voucherUsageRepo)
	entitlementUC := usecase.NewEntitlementUsecase(bookRepo, userBookRepo, orderItemRepo, log)
	orderUC := usecase.NewOrderUsecase(
		txManager, bookRepo, addressRepo, shippingRepo, cartItemRepo,
		voucherUC, entitlementUC, queue, m, log,
	)
	statusUC := usecase.NewOrderStatusUsecase(txManager, orderRepo, entitlementUC, queue, m, log)
	paymentUC := usecase.NewPaymentUsecase(paymentRepo, orderRepo, gateways, m, log)

	handlers := server.Handlers{
		Orders:      handler.NewOrderHandler(orderUC, statusUC),
		Vouchers:    handler.NewVoucherHandler(voucherUC),
		Payments:    handler.NewPaymentHandler(paymentUC, statusUC, cfg.FEURL),
		AdminOrders: handler.NewAdminOrderHandler(statusUC),
	}

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	log.Info("starting server", "addr", addr, "env", cfg.GoEnv, "gateways", len(gateways))
	if err := server.Start(addr, cfg, handlers, m); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
