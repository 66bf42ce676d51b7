package port

import "teamassist/internal/domain"

type UserDirectory interface {
	Authenticate(username, password string) (domain.User, error)
	Lookup(username string) (domain.User, bool)
}

type DashboardProvider interface {
	Dashboard(user domain.User) (domain.Dashboard, error)
}
