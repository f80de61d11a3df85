package handlers

import "github.com/labstack/echo/v4"

func Routes(server *echo.Echo, messageService MessageService, secret string) {
	server.POST("/webhook", Webhook(messageService, secret))
	server.GET("/messages", ListMessages(messageService))
	server.GET("/stats", Stats(messageService))
	server.GET("/health/live", Live())
	server.GET("/health/ready", Ready(messageService, secret))
}
