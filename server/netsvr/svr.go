package netsvr

import (
	"net/http"

	"github.com/zintix-labs/autobet/server/app"
)

// NetSvr 路由 + 服務啟停。
//   - 只交給最外層組裝使用，其他層只面向 NetRouter。
//   - 本身就是 app.Component，可直接交給 app.App 管理生命週期。
//   - 同時是 http.Handler，測試可以不開 port 直接打。
type NetSvr interface {
	NetRouter
	app.Component
	http.Handler
}

// NetRouter 純路由行為，Group 回呼拿不到 Run/Shutdown。
type NetRouter interface {
	// middleware
	Use(middleware func(http.Handler) http.Handler)

	// 註冊路由
	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)
	Handle(path string, h http.Handler)

	// 群組路由
	Group(path string, fn func(NetRouter))
}
