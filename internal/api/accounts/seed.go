package accounts

import (
	"context"
	"errors"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// DevUsers are created on dev API start-up. Passwords equal usernames.
var DevUsers = []NewUserInput{
	{Username: "admin", Password: "admin", Email: "admin@repairdesk.local", FullName: "Администратор", Role: domain.RoleAdmin},
	{Username: "director", Password: "director", Email: "director@repairdesk.local", FullName: "Директор", Role: domain.RoleDirector},
	{Username: "manager", Password: "manager", Email: "manager@repairdesk.local", FullName: "Менеджер", Role: domain.RoleManager, Phone: "+7 900 000-00-01"},
	{Username: "master", Password: "master", Email: "master@repairdesk.local", FullName: "Мастер", Role: domain.RoleMaster, Specialization: "Смартфоны"},
}

// Seed registers users, skipping the ones that already exist.
func Seed(ctx context.Context, svc *Service, users []NewUserInput) error {
	for _, u := range users {
		if _, err := svc.Register(ctx, u); err != nil && !errors.Is(err, ErrUserExists) {
			return err
		}
	}
	return nil
}
