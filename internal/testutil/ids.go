package testutil

import "fmt"

func generateTestID(n int) string {
	return fmt.Sprintf("test-%06d", n)
}
