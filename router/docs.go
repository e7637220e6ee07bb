package router

//go:generate sh -c "cd .. && swag init --generalInfo router/docs.go --output docs/swagger --parseDependency --parseInternal --quiet"

// @title Pathway API
// @version 1.0
// @description API for managing learning plans, their ordered modules and the ordered tasks within each module.
// @BasePath /
// @schemes https http
// @securityDefinitions.apikey BearerToken
// @description Supply a token issued with `pathway token` using the `Authorization: Bearer <token>` header.
// @in header
// @name Authorization
// @contact.name Pathway
// @contact.url https://github.com/priyxstudio/pathway
// @produce json
type docStub struct{}
