package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	BufferDays  int    `env:"BUFFER_DAYS" default:"1"`
	Env         string `env:"APP_ENV" default:"dev"`
}
