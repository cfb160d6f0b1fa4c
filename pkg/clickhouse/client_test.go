package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host: "ch", Port: 9000, Database: "distro", User: "reader", Password: "pw",
		DialTimeout: 5 * time.Second, MaxExecTime: time.Minute,
	})
	assert.Equal(t, "clickhouse://reader:pw@ch:9000/distro?dial_timeout=5s&max_execution_time=60", dsn)

	dsn = buildDSN(ClientConfig{Host: "ch", Port: 8123, Database: "distro", User: "u", UseHTTP: true})
	assert.Equal(t, "clickhouse+http://u:@ch:8123/distro", dsn)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(WithPort(9000))
	assert.Error(t, err)
}
