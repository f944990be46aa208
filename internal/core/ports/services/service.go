package services

// ServiceContainer groups the service facades handed to the HTTP and event
// layers at startup.
type ServiceContainer struct {
	Wallet WalletSvcFacade
	User   UserSvcFacade
}
