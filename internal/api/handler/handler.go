package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/repository"
	"github.com/d60-Lab/flare/internal/search"
	"github.com/d60-Lab/flare/internal/service"
)

// Handler 聚合全部 HTTP 处理器依赖
type Handler struct {
	auth          *service.AuthService
	posts         *service.PostService
	conversions   *service.ConversionService
	notifications *service.NotificationService
	invitations   repository.InvitationRepository
	users         repository.UserRepository
	search        search.Service
}

func New(
	auth *service.AuthService,
	posts *service.PostService,
	conversions *service.ConversionService,
	notifications *service.NotificationService,
	invitations repository.InvitationRepository,
	users repository.UserRepository,
	searchSvc search.Service,
) *Handler {
	registerValidators()
	return &Handler{
		auth:          auth,
		posts:         posts,
		conversions:   conversions,
		notifications: notifications,
		invitations:   invitations,
		users:         users,
		search:        searchSvc,
	}
}

// registerValidators 注册自定义校验规则（binding tag 用）
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("reaction", func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, t := range model.ValidReactionTypes() {
			if t == val {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("contenttype", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", search.ContentAll, search.ContentPosts, search.ContentEvents:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("notifpref", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case model.PrefAll, model.PrefInAppOnly, model.PrefEmailOnly, model.PrefNone:
			return true
		}
		return false
	})
}
