package payment

import (
	"github.com/smallbiznis/splitpay/internal/fee"
	"github.com/smallbiznis/splitpay/internal/payment/repository"
	"github.com/smallbiznis/splitpay/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fee.Module,
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
