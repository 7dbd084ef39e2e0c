package infra

// ExternalInfraManager implements InfraManager for an instance managed
// outside the suite. Only token generation does anything.
type ExternalInfraManager struct {
	secret string
}

func NewExternalInfraManager(secret string) *ExternalInfraManager {
	return &ExternalInfraManager{secret: secret}
}

func (e *ExternalInfraManager) StartCampi(CampiConfig) error { return nil }
func (e *ExternalInfraManager) StopCampi() error             { return nil }

func (e *ExternalInfraManager) GenerateToken(subject string) (string, error) {
	return signToken(e.secret, subject)
}
