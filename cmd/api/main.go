package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(cfg config.Config) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 24 * time.Hour,
	}
}

func (i *jwtIssuer) Issue(userID int64, email string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envは無ければ環境変数だけで動く
	_ = godotenv.Load()

	cfg := config.Load()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductSpec{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（サインアップ：Hash / サインイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(10)
	verifier := usecase.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg)

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(userRepo, authValidator, hasher, verifier, issuer, clock)
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, userRepo, idGen, clock)

	//Handler生成
	h := server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC),
	}

	//Server起動
	e := server.New(cfg, h)

	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}

	if err := e.Start(addr); err != nil {
		panic(err)
	}
}
