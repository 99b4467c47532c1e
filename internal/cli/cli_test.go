package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lherron/catimerge/internal/domain"
	"github.com/lherron/catimerge/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolate keeps real config files and CATIMERGE_* variables out of the test
// and resets flag state left behind by earlier Execute calls.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, v := range []string{
		"CATIMERGE_VERBOSE",
		"CATIMERGE_LOG_LEVEL",
		"CATIMERGE_LOG_FORMAT",
		"CATIMERGE_OUTPUT",
		"CATIMERGE_COMPRESSION_LEVEL",
		"CATIMERGE_COMPRESSION_LEVEL_FILE",
	} {
		t.Setenv(v, "")
	}
	oldCwd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldCwd) })
	require.NoError(t, os.Chdir(home))

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func fixtureZips(t *testing.T) (string, string) {
	t.Helper()
	first := testutil.WriteZip(t, "catima1.zip",
		testutil.Table(testutil.FirstTable),
		testutil.Image("card_2_icon.png", "a"),
		testutil.Image("card_1_front.png", "a"),
		testutil.Image("card_1_icon.png", "a"),
	)
	second := testutil.WriteZip(t, "catima2.zip",
		testutil.Table(testutil.SecondTable),
		testutil.Image("card_1_icon.png", "b"),
		testutil.Image("card_2_front.png", "b"),
	)
	return first, second
}

func TestMerge_Verbose(t *testing.T) {
	isolate(t)
	first, second := fixtureZips(t)
	output := filepath.Join(t.TempDir(), "out.zip")

	out, err := execute(t, "-v", first, second, output)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Merging '" + first + "' and '" + second + "' into '" + output + "'...",
		"Parsing...",
		"Version: 2",
		"ZIP #1 has   2 group(s),   4 card(s),   3 card group(s),   3 image file(s)",
		"ZIP #2 has   2 group(s),   2 card(s),   2 card group(s),   2 image file(s)",
		"Merging...",
		"Output has   3 group(s),   6 card(s),   5 card group(s),   5 image file(s)",
		"Writing...",
		"",
	}, "\n")
	assert.Equal(t, want, out)

	members := testutil.ReadZip(t, output)
	assert.Equal(t, []string{
		"catima.csv",
		"card_2_icon.png",
		"card_1_front.png",
		"card_1_icon.png",
		"card_5_icon.png",
		"card_6_front.png",
	}, testutil.Names(members))
}

func TestMerge_Quiet(t *testing.T) {
	isolate(t)
	first, second := fixtureZips(t)
	output := filepath.Join(t.TempDir(), "out.zip")

	out, err := execute(t, first, second, output)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.FileExists(t, output)
}

func TestMerge_VerboseFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CATIMERGE_VERBOSE", "true")
	first, second := fixtureZips(t)
	output := filepath.Join(t.TempDir(), "out.zip")

	out, err := execute(t, first, second, output)
	require.NoError(t, err)
	assert.Contains(t, out, "Writing...")
}

func TestMerge_StoredOutput(t *testing.T) {
	isolate(t)
	first, second := fixtureZips(t)
	output := filepath.Join(t.TempDir(), "out.zip")

	_, err := execute(t, "--compression-level", "0", first, second, output)
	require.NoError(t, err)
	assert.Len(t, testutil.ReadZip(t, output), 6)
}

func TestMerge_Errors(t *testing.T) {
	isolate(t)
	first, _ := fixtureZips(t)
	mismatched := testutil.WriteZip(t, "mismatched.zip", testutil.Table(testutil.CRLF(
		"2", "", "_id", "", "_id,store", "", "cardId,groupId",
	)))

	tests := []struct {
		name string
		args []string
		kind domain.Kind
		msg  string
	}{
		{name: "too few args", args: []string{first, first}, msg: "accepts 3 arg(s)"},
		{name: "missing input", args: []string{first, "nope.zip", "out.zip"}, kind: domain.KindIO},
		{name: "mismatched headers", args: []string{first, mismatched, "out.zip"}, kind: domain.KindSchemaMismatch, msg: "mismatched cards_keys"},
		{name: "bad compression level", args: []string{"--compression-level", "11", first, first, "out.zip"}, msg: "compression_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(rootCmd)
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			if tt.kind != "" {
				assert.Equal(t, tt.kind, domain.KindOf(err))
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
			assert.NoFileExists(t, "out.zip")
		})
	}
}

func TestHelpDescribesStrictChecks(t *testing.T) {
	isolate(t)

	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "must be\nblank")
	assert.Contains(t, out, "rather than an overwrite")
}

func TestVersionFlag(t *testing.T) {
	isolate(t)

	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "catimerge "+Version+"\n", out)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "catimerge version "+Version)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, Version, got["version"])
}

func TestInspect_Table(t *testing.T) {
	isolate(t)
	first, _ := fixtureZips(t)

	out, err := execute(t, "inspect", first)
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, "Max card ID:")
	assert.Contains(t, out, "identical")
	assert.Contains(t, out, "card_1_front.png")
	assert.Contains(t, out, "cards keys:")
}

func TestInspect_JSON(t *testing.T) {
	isolate(t)
	first, _ := fixtureZips(t)

	out, err := execute(t, "inspect", "--json", first)
	require.NoError(t, err)

	var report inspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Version)
	assert.Equal(t, domain.Counts{Groups: 2, Cards: 4, CardGroups: 3, Images: 3}, report.Counts)
	assert.Equal(t, []string{"one", `"two'`}, report.Groups)
	assert.Equal(t, []string{"cardId", "groupId"}, report.Headers[domain.SectionCardGroups])
	assert.Equal(t, 4, report.MaxCardID)
	assert.True(t, report.RoundTrip)
	assert.Len(t, report.TableDigest, 16)
	require.Len(t, report.Images, 3)
	assert.Equal(t, inspectImage{
		Name:   "card_2_icon.png",
		CardID: 2,
		Side:   "icon",
		Size:   uint64(len("PNG:a:card_2_icon.png")),
	}, report.Images[0])
}

func TestInspect_YAMLFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CATIMERGE_OUTPUT", "yaml")
	_, second := fixtureZips(t)

	out, err := execute(t, "inspect", second)
	require.NoError(t, err)

	var report inspectReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Counts.Cards)
	assert.Equal(t, 2, report.MaxCardID)
}

func TestInspect_Errors(t *testing.T) {
	isolate(t)
	first, _ := fixtureZips(t)

	_, err := execute(t, "inspect", "--json", "--yaml", first)
	assert.Error(t, err)

	resetFlags(rootCmd)
	_, err = execute(t, "inspect", "-o", "xml", first)
	assert.Error(t, err)

	resetFlags(rootCmd)
	bad := testutil.WriteZip(t, "bad.zip", testutil.Table("3\r\n\r\n"))
	_, err = execute(t, "inspect", bad)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnsupportedVersion, domain.KindOf(err))
}

func TestQuotePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "out.zip", want: "'out.zip'"},
		{in: "Bob's.zip", want: `"Bob's.zip"`},
		{in: `a'b"c`, want: `'a\'b"c'`},
		{in: `dir\x.zip`, want: `'dir\\x.zip'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quotePath(tt.in), tt.in)
	}
}
