package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

type Opts struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	Log                *zap.Logger
}

func NewGorm(o Opts) (*gorm.DB, error) {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	var dial gorm.Dialector
	switch o.Driver {
	case "sqlite":
		dial = sqlite.Open(sqliteDSN(o.DSN))
	case "postgres":
		dial = postgres.Open(o.DSN)
	case "mysql":
		cfg, err := mysqlConfig(o.DSN, o.Username, o.Password)
		if err != nil {
			return nil, err
		}
		masked := cfg.Clone()
		if masked.Passwd != "" {
			masked.Passwd = "****"
		}
		o.Log.Info("mysql dsn normalized", zap.String("dsn", masked.FormatDSN()))
		dial = mysql.Open(cfg.FormatDSN())
	default:
		return nil, ErrUnsupportedDriver
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: gormLogger(o.Log, o.LogLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	// 预编译缓存；写操作的事务由 repo.Store.InTx 显式控制
	return db.Session(&gorm.Session{
		PrepareStmt:            true,
		CreateBatchSize:        200,
		SkipDefaultTransaction: true,
	}), nil
}

// mysqlConfig 接受三种写法：go-sql-driver 原生 DSN、mysql:// URL、jdbc:mysql:// URL。
// JDBC 专有参数会被翻译或丢弃，user/pass 非空时覆盖 DSN 里的账号。
func mysqlConfig(input, userOverride, passOverride string) (*mysqldrv.Config, error) {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if in == "" {
		return nil, errors.New("mysql dsn is empty")
	}

	var cfg *mysqldrv.Config
	if strings.HasPrefix(in, "mysql://") {
		u, err := url.Parse(in)
		if err != nil {
			return nil, fmt.Errorf("parse mysql url: %w", err)
		}
		if cfg, err = fromJDBCURL(u); err != nil {
			return nil, err
		}
	} else {
		var err error
		if cfg, err = mysqldrv.ParseDSN(in); err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
	}

	// UPDATE 的影响行数按匹配行计，值未变化也算 1；repo 用它判断 NotFound
	cfg.ClientFoundRows = true
	if userOverride != "" {
		cfg.User = userOverride
	}
	if passOverride != "" {
		cfg.Passwd = passOverride
	}
	return cfg, nil
}

func fromJDBCURL(u *url.URL) (*mysqldrv.Config, error) {
	cfg := mysqldrv.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	params := map[string]string{"charset": "utf8mb4"}
	for k, vs := range u.Query() {
		if len(vs) == 0 {
			continue
		}
		v := vs[len(vs)-1]
		switch k {
		case "user":
			cfg.User = v
		case "password":
			cfg.Passwd = v
		case "characterEncoding", "charset":
			params["charset"] = v
		case "useSSL":
			switch strings.ToLower(v) {
			case "true", "1":
				cfg.TLSConfig = "true"
			case "skip-verify", "preferred":
				cfg.TLSConfig = strings.ToLower(v)
			default:
				cfg.TLSConfig = "false"
			}
		case "serverTimezone":
			loc, err := time.LoadLocation(v)
			if err != nil {
				return nil, fmt.Errorf("serverTimezone %q: %w", v, err)
			}
			cfg.Loc = loc
		case "parseTime":
			cfg.ParseTime = v == "true" || v == "1"
		case "useUnicode", "zeroDateTimeBehavior", "autoReconnect":
			// JDBC 专用，驱动不认
		default:
			params[k] = v
		}
	}
	cfg.Params = params
	return cfg, nil
}

var gormLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

// gormLogger 把 GORM 的 SQL 日志接到 zap（logger 名 "gorm"）；GORM 自己在消息里带了文件行号
func gormLogger(l *zap.Logger, level string) logger.Interface {
	lvl, ok := gormLevels[strings.ToLower(level)]
	if !ok {
		lvl = logger.Warn
	}
	return logger.New(zapPrinter{l.Named("gorm").WithOptions(zap.WithCaller(false)).Sugar()}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

type zapPrinter struct{ s *zap.SugaredLogger }

func (p zapPrinter) Printf(format string, args ...any) { p.s.Infof(format, args...) }

// sqliteDSN 补齐 go-sqlite3 参数（已显式给出的不覆盖）：
// 外键约束默认关闭；写事务用 BEGIN IMMEDIATE 并在锁上等待，
// 否则连接池里两个并发写事务会直接报 database is locked。
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "userhub.db"
	}
	for _, p := range []struct {
		keys []string
		kv   string
	}{
		{[]string{"_foreign_keys", "_fk"}, "_foreign_keys=on"},
		{[]string{"_busy_timeout", "_timeout"}, "_busy_timeout=5000"},
		{[]string{"_txlock"}, "_txlock=immediate"},
	} {
		if !hasParam(dsn, p.keys...) {
			dsn = appendQuery(dsn, p.kv)
		}
	}
	return dsn
}

func hasParam(dsn string, keys ...string) bool {
	_, q, ok := strings.Cut(dsn, "?")
	if !ok {
		return false
	}
	for _, kv := range strings.Split(q, "&") {
		k, _, _ := strings.Cut(kv, "=")
		for _, want := range keys {
			if k == want {
				return true
			}
		}
	}
	return false
}

func appendQuery(dsn, kv string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + kv
	}
	return dsn + "?" + kv
}

var ErrUnsupportedDriver = errors.New("unsupported database driver")
