package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/memberauth/internal/member/usecase.(*Usecase).OTPSend(0xc000, {0x1, 0x2})
	/src/internal/member/usecase/otp_send.go:42 +0x1a
github.com/shandysiswandi/memberauth/internal/pkg/router.(*Router).wrap.func1()
	/src/internal/pkg/router/router.go:120
`)

	assert.Equal(t, []string{
		"internal/member/usecase/otp_send.go:42",
		"internal/pkg/router/router.go:120",
	}, InternalPaths(stack))
}

func TestInternalPaths_NoInternalFrames(t *testing.T) {
	assert.Empty(t, InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:10 +0x1\n")))
}
