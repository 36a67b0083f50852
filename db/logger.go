package db

import "go.uber.org/zap"

func logger() *zap.SugaredLogger {
	return zap.S().Named("db")
}

func logInfof(format string, v ...interface{}) {
	logger().Infof(format, v...)
}

func logErrorf(format string, v ...interface{}) {
	logger().Errorf(format, v...)
}
