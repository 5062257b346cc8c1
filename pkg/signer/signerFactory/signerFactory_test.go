package signerFactory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thortx/thortx-go/pkg/config"
	"go.uber.org/zap"
)

func Test_NewSigner(t *testing.T) {
	ctx := context.Background()

	t.Run("Should build a local signer", func(t *testing.T) {
		s, err := NewSigner(ctx, &config.SignerConfig{
			Type:       config.SignerType_Local,
			PrivateKey: "0xdce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", s.Address().String())
	})

	t.Run("Should reject bad keys and unknown types", func(t *testing.T) {
		_, err := NewSigner(ctx, &config.SignerConfig{Type: config.SignerType_Local, PrivateKey: "0x1234"}, zap.NewNop())
		assert.Error(t, err)
		_, err = NewSigner(ctx, &config.SignerConfig{Type: "ledger"}, zap.NewNop())
		assert.Error(t, err)
	})
}
