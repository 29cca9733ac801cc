package config

import (
	"time"

	"github.com/natours/natours-api/log"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type ConfigMock struct {
	mock.Mock
}

func NewConfigMock() *ConfigMock {
	return &ConfigMock{}
}

func (o *ConfigMock) Default() *ConfigMock {
	o.On("Environment").Return(Production)
	o.On("Naming").Return(NewDefaultNaming())
	o.On("SupportedOperations").Return(AllOperations)
	o.On("Auth").Return(AuthConfig{
		JWTSecret:       "a-very-long-and-secure-test-secret",
		JWTExpiresIn:    90 * 24 * time.Hour,
		CookieExpiresIn: 90 * 24 * time.Hour,
	})
	o.On("Logger").Return(log.NewZapLogger(zap.NewNop()))
	return o
}

func (o *ConfigMock) Environment() string {
	args := o.Called()
	return args.String(0)
}

func (o *ConfigMock) Naming() NamingConvention {
	args := o.Called()
	return args.Get(0).(NamingConvention)
}

func (o *ConfigMock) SupportedOperations() Operations {
	args := o.Called()
	return args.Get(0).(Operations)
}

func (o *ConfigMock) Auth() AuthConfig {
	args := o.Called()
	return args.Get(0).(AuthConfig)
}

func (o *ConfigMock) Logger() log.Logger {
	args := o.Called()
	return args.Get(0).(log.Logger)
}
