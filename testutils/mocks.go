package testutils

import (
	"github.com/SteveElouga/waterbill-api/services/verification"
	"github.com/stretchr/testify/mock"
)

type MockSmsGateway struct {
	mock.Mock
}

func (m *MockSmsGateway) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSmsGateway) SendCode(phone, code string) (bool, error) {
	args := m.Called(phone, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSmsGateway) SendVerification(phone, code string, purpose verification.Purpose, redirectURL string) (bool, error) {
	args := m.Called(phone, code, purpose, redirectURL)
	return args.Bool(0), args.Error(1)
}

func (m *MockSmsGateway) SendConfirmation(phone string, purpose verification.Purpose, details string) (bool, error) {
	args := m.Called(phone, purpose, details)
	return args.Bool(0), args.Error(1)
}
