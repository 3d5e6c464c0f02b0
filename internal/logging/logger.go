package logging

import (
	"go.uber.org/zap"
)

// New returns a JSON production logger for prod and a console development
// logger otherwise, tagged with the service name.
func New(goEnv string, service string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if goEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", service)), nil
}
