package tlsconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCompileAppliesALPNAndServerName(t *testing.T) {
	b := NewHTTPAuto().SetServerName("example.com")
	cfg, err := Compile(b, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{"h2", "http/1.1"}, cfg.NextProtos)
	require.Equal(t, "example.com", cfg.ServerName)
}

func TestCompileServerVerifyDisableSetsInsecureSkipVerify(t *testing.T) {
	b := NewBuilder().SetServerVerify(ServerVerifyDisable)
	cfg, err := Compile(b, zap.NewNop())
	require.NoError(t, err)
	require.True(t, cfg.InsecureSkipVerify)
}

func TestCompileSelfSignedClientAuthProducesUsableCertificate(t *testing.T) {
	b := NewBuilder().SetClientAuth(&ClientAuth{Kind: ClientAuthSelfSigned})
	cfg, err := Compile(b, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	require.NotNil(t, cfg.Certificates[0].Leaf)
}

func TestCompileEmptyClientChainFails(t *testing.T) {
	b := NewBuilder().SetClientAuth(&ClientAuth{Kind: ClientAuthSingle})
	_, err := Compile(b, zap.NewNop())
	require.ErrorIs(t, err, ErrEmptyClientChain)
}

func TestCompileExtrasSurfacesECHGreaseOnlyWhenBothEnabled(t *testing.T) {
	b := NewBuilder().SetECHEnabled(true).SetGREASEEnabled(true)
	extras := CompileExtras(b)
	require.True(t, extras.ECHGREASE)

	b2 := NewBuilder().SetGREASEEnabled(true)
	extras2 := CompileExtras(b2)
	require.False(t, extras2.ECHGREASE)
}

func TestCompileLayeredBuilderInheritsBaseALPN(t *testing.T) {
	base := NewHTTP2()
	top := NewBuilder(base).SetServerName("over.example")
	cfg, err := Compile(top, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{"h2"}, cfg.NextProtos)
}

func TestCompileOCSPStaplingInstallsVerifyConnection(t *testing.T) {
	b := NewBuilder().SetOCSPStapling(true)
	cfg, err := Compile(b, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, cfg.VerifyConnection)

	b2 := NewBuilder()
	cfg2, err := Compile(b2, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, cfg2.VerifyConnection)
}
