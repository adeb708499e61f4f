package order

import (
	"github.com/smallbiznis/dinepos/internal/order/mirror"
	"github.com/smallbiznis/dinepos/internal/order/repository"
	"github.com/smallbiznis/dinepos/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	mirror.Module,
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
