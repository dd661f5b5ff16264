package config

import "os"

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート

	DatabaseURL      string // 接続URL（あれば個別設定より優先）
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト
	PostgresPort     string // DBポート
	PostgresSSLMode  string

	JWTSecret string // JWT署名シークレット
}

// Loadは環境変数から設定を組み立てる。未設定は開発用デフォルト。
func Load() Config {
	return Config{
		Port: getenv("PORT", "3000"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "commerce"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: getenv("JWT_SECRET", "dev_secret_change_me"),
	}
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
