package mocks

import (
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/stretchr/testify/mock"
)

type PublisherMock struct {
	mock.Mock
}

func (p *PublisherMock) PublishReading(reading entities.Reading) error {
	args := p.Called(reading)
	return args.Error(0)
}

func (p *PublisherMock) PublishStatus(status entities.StatusEvent) error {
	args := p.Called(status)
	return args.Error(0)
}
