package app

import (
	"github.com/google/wire"
)

// Components Wire 注入收集到的服务与资源
type Components struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 导出给 Wire 使用
var ProviderSet = wire.NewSet(
	wire.Struct(new(Components), "*"),
)

// Bind 将组件注册到应用, 资源按传入顺序注册, 关闭时逆序
func (a *BaseApp) Bind(comps *Components) *BaseApp {
	a.AppendServer(comps.Servers...)
	a.AppendCloser(comps.Closers...)
	return a
}

// CloserFunc 将函数适配为 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
