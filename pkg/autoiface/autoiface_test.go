package autoiface_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/autoiface/pkg/autoiface"
)

func TestExtractAndSynthesize(t *testing.T) {
	decl := autoiface.TypeDeclaration{
		Name:       "Cache",
		Namespaces: []string{"App"},
		Modifiers:  autoiface.ModPublic,
		Marker:     &autoiface.Marker{Name: "AutoInterface"},
		TypeParameters: []autoiface.GenericParameter{
			{Name: "TKey", NotNull: true},
		},
		Members: []autoiface.Member{
			{
				Kind:      autoiface.MemberMethod,
				Name:      "Get",
				Type:      "string",
				Modifiers: autoiface.ModPublic,
				Parameters: []autoiface.Parameter{
					{Type: "TKey", Name: "key"},
				},
			},
			{
				Kind:      autoiface.MemberProperty,
				Name:      "Count",
				Type:      "int",
				Modifiers: autoiface.ModPublic,
				Accessors: []autoiface.Accessor{
					{Kind: autoiface.AccessorGet},
					{Kind: autoiface.AccessorSet, Modifiers: autoiface.ModPrivate},
				},
			},
			{Kind: autoiface.MemberMethod, Name: "Reset", Type: "void", Modifiers: autoiface.ModPublic | autoiface.ModStatic},
		},
	}

	snap := autoiface.Extract(decl)
	assert.Len(t, snap.Members, 2)
	assert.True(t, snap.Equal(autoiface.Extract(decl)))

	contract, err := autoiface.Synthesize(snap, autoiface.Options{})
	require.NoError(t, err)
	assert.Equal(t, "ICache.g.cs", contract.FileName)
	assert.Contains(t, contract.Lines, "    public interface ICache<TKey> where TKey : notnull")
	assert.Contains(t, contract.Lines, "        string Get(TKey key);")
	assert.Contains(t, contract.Lines, "        int Count { get; }")
}

func TestParseSource(t *testing.T) {
	decls, diags, err := autoiface.ParseSource("Repo.cs", `
namespace App;

[Contract("IStore")]
public class Repo
{
    public void Save() { }
}
`, "Contract")
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, decls, 1)

	snap := autoiface.Extract(decls[0])
	assert.Equal(t, "IStore", snap.ContractName())
	assert.Equal(t, "App", snap.Namespace)
	assert.Equal(t, autoiface.Identity("App.Repo`0"), autoiface.IdentityOf(decls[0]))
}

func TestParseManifest(t *testing.T) {
	decls, err := autoiface.ParseManifest("api.autoiface.yaml", []byte(`
namespace: App
types:
  - name: Client
    marker: true
`))
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "Client", decls[0].Name)
}

func TestMerge(t *testing.T) {
	merged, diags := autoiface.Merge([]autoiface.TypeDeclaration{
		{Name: "Repo", Partial: true, Marker: &autoiface.Marker{Name: "AutoInterface"},
			Members: []autoiface.Member{{Kind: autoiface.MemberMethod, Name: "A", Type: "void", Modifiers: autoiface.ModPublic}}},
		{Name: "Repo", Partial: true,
			Members: []autoiface.Member{{Kind: autoiface.MemberMethod, Name: "B", Type: "void", Modifiers: autoiface.ModPublic}}},
	})
	assert.Empty(t, diags)
	assert.Len(t, autoiface.Extract(merged).Members, 2)
}

func TestPipeline(t *testing.T) {
	p, err := autoiface.NewPipeline(autoiface.PipelineConfig{})
	require.NoError(t, err)

	decl := autoiface.TypeDeclaration{Name: "Empty", Marker: &autoiface.Marker{Name: "AutoInterface"}}
	first, err := p.Process(decl)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := p.Process(decl)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Contract, second.Contract)
}

func TestParseModifier(t *testing.T) {
	mod, ok := autoiface.ParseModifier("override")
	assert.True(t, ok)
	assert.Equal(t, autoiface.ModOverride, mod)

	_, ok = autoiface.ParseModifier("banana")
	assert.False(t, ok)
}
