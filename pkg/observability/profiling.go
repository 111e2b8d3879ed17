package observability

import (
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
)

// StartProfiling 按环境变量开启持续性能剖析，未配置时静默跳过
func StartProfiling(serviceName string) {
	serverAddress := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if serverAddress == "" {
		return
	}

	_, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   serverAddress,
		Logger:          nil,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		fmt.Printf("[WARN] Failed to start pyroscope profiling: %v\n", err)
	}
}
