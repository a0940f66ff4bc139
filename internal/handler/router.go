package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/zoyabites/zoyabites-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса zoyabites.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Публичное меню.
		r.Get("/categories", h.GetCategories)
		r.Get("/products", h.GetProducts)

		// Маршруты текущего пользователя.
		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.RequireUser)

			r.Get("/auth/me", h.Me)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)

			r.Post("/orders", h.CreateOrder)
			r.Get("/orders", h.GetOrders)

			r.Post("/create-razorpay-order", h.CreateRazorpayOrder)
			r.Post("/verify-razorpay-payment", h.VerifyRazorpayPayment)

			r.Get("/addresses", h.GetAddresses)
			r.Post("/addresses", h.CreateAddress)
			r.Put("/addresses/{id}/default", h.SetDefaultAddress)
			r.Delete("/addresses/{id}", h.DeleteAddress)

			r.Post("/upload-image", h.UploadImage)
		})

		// Проверка кода доступа открыта: именно она выдаёт операторский токен.
		r.Post("/admin/verify-code", h.VerifyCode)

		// Маршруты оператора: роль admin/seller либо grant-токен.
		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.RequireOperator)

			r.Get("/admin/orders", h.GetAllOrders)
			r.Put("/admin/orders/{id}", h.UpdateOrderStatus)
			r.Delete("/admin/orders/{id}", h.DeleteOrder)

			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{id}", h.UpdateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Get("/admin/access-codes", h.ListAccessCodes)
			r.Post("/admin/access-codes", h.CreateAccessCode)
			r.Patch("/admin/access-codes/{id}", h.ToggleAccessCode)
			r.Delete("/admin/access-codes/{id}", h.DeleteAccessCode)
		})

		// Управление пользователями доступно только администраторам.
		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.RequireAdmin)

			r.Get("/manage-users", h.ListUsers)
			r.Post("/manage-users", h.ManageUsers)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
