package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PLANVIVA_TEST_MODE") == "" {
			_ = os.Setenv("PLANVIVA_TEST_MODE", "1")
		}
	})
}
