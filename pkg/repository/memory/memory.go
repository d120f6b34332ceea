package memory

import (
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is a process local store for development and tests
type Memory struct {
	connection *connectionRepository
	dataSource *dataSourceRepository
	activity   *activityRepository
	pipeline   *pipelineRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	connectionRepo := newConnectionRepository()
	dataSourceRepo := newDataSourceRepository(connectionRepo)
	connectionRepo.dataSources = dataSourceRepo

	return &Memory{
		connection: connectionRepo,
		dataSource: dataSourceRepo,
		activity:   newActivityRepository(),
		pipeline:   newPipelineRepository(),
	}
}

func (m *Memory) Connection() interfaces.ConnectionRepository {
	return m.connection
}

func (m *Memory) DataSource() interfaces.DataSourceRepository {
	return m.dataSource
}

func (m *Memory) Activity() interfaces.ActivityRepository {
	return m.activity
}

func (m *Memory) Pipeline() interfaces.PipelineRepository {
	return m.pipeline
}

func (m *Memory) Close() error {
	return nil
}
