package shell_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poltergeist/buildscript/pkg/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, opts shell.Options, build func(sh *shell.Script)) string {
	t.Helper()
	sh := shell.New(opts)
	build(sh)
	text, err := sh.Render()
	require.NoError(t, err)
	return text
}

func TestRender_FoldDoesNotChangeExitStatus(t *testing.T) {
	for _, command := range []string{"true", "false", "exit 7"} {
		t.Run(command, func(t *testing.T) {
			plain := render(t, shell.Options{}, func(sh *shell.Script) {
				sh.Cmd(command, shell.NoEcho())
				sh.Cmd("echo after", shell.NoEcho())
			})
			folded := render(t, shell.Options{}, func(sh *shell.Script) {
				sh.Fold("wrapped", func() {
					sh.Cmd(command, shell.NoEcho())
				})
				sh.Cmd("echo after", shell.NoEcho())
			})

			plainOut, plainCode := runBash(t, plain)
			foldOut, foldCode := runBash(t, folded)
			assert.Equal(t, plainCode, foldCode)
			assert.Equal(t, strings.Contains(plainOut, "after"), strings.Contains(foldOut, "after"))
		})
	}
}

func TestRender_ConditionalExclusivity(t *testing.T) {
	// Each predicate is a raw test of a variable; the body prints its branch.
	build := func(sh *shell.Script) {
		sh.If(`"$A" = 1`, func() { sh.Cmd("echo first", shell.NoEcho()) })
		sh.Elif(`"$B" = 1`, func() { sh.Cmd("echo second", shell.NoEcho()) })
		sh.Elif(`"$C" = 1`, func() { sh.Cmd("echo third", shell.NoEcho()) })
		sh.Else(func() { sh.Cmd("echo else", shell.NoEcho()) })
	}
	text := render(t, shell.Options{}, build)

	tests := []struct {
		a, b, c int
		want    string
	}{
		{1, 1, 1, "first\n"},
		{0, 1, 1, "second\n"},
		{0, 0, 1, "third\n"},
		{0, 0, 0, "else\n"},
		{1, 0, 1, "first\n"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d%d%d", tt.a, tt.b, tt.c), func(t *testing.T) {
			env := fmt.Sprintf("A=%d B=%d C=%d\n", tt.a, tt.b, tt.c)
			out, code := runBash(t, env+text)
			require.Equal(t, 0, code)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRender_RawConditionVerbatim(t *testing.T) {
	text := render(t, shell.Options{}, func(sh *shell.Script) {
		sh.If("! ([[ -f /nonexistent/a ]] && cmp --silent /nonexistent/a /nonexistent/b)", func() {
			sh.Cmd("echo mismatch", shell.NoEcho())
		}, shell.RawCondition())
	})
	out, code := runBash(t, text)
	require.Equal(t, 0, code)
	assert.Equal(t, "mismatch\n", out)
}

func TestRender_RetryStopsAfterSuccess(t *testing.T) {
	dir := t.TempDir()
	counter := dir + "/count"
	// Fails twice, then succeeds.
	command := fmt.Sprintf(`n=$(cat %[1]s 2>/dev/null || echo 0); n=$((n+1)); echo $n > %[1]s; [ "$n" -ge 3 ]`, counter)

	text := render(t, shell.Options{Retry: shell.RetryPolicy{Attempts: 5}}, func(sh *shell.Script) {
		sh.Cmd(command, shell.WithRetry(), shell.NoEcho())
		sh.Cmd("cat "+counter, shell.NoEcho())
	})

	out, code := runBash(t, text)
	require.Equal(t, 0, code)
	assert.Equal(t, "3\n", out)
}

func TestRender_RetryIsBounded(t *testing.T) {
	dir := t.TempDir()
	counter := dir + "/count"
	command := fmt.Sprintf(`n=$(cat %[1]s 2>/dev/null || echo 0); echo $((n+1)) > %[1]s; exit 4`, counter)

	text := render(t, shell.Options{Retry: shell.RetryPolicy{Attempts: 3}}, func(sh *shell.Script) {
		sh.Cmd("("+command+")", shell.WithRetry(), shell.NoEcho())
		sh.Cmd("echo unreachable", shell.NoEcho())
	})

	out, code := runBash(t, text)
	assert.Equal(t, 4, code)
	assert.NotContains(t, out, "unreachable")

	attempts, _ := runBash(t, "cat "+counter)
	assert.Equal(t, "3\n", attempts)
}

func TestRender_FailingCommandAbortsScript(t *testing.T) {
	text := render(t, shell.Options{}, func(sh *shell.Script) {
		sh.If("1 -eq 1", func() {
			sh.Cmd("false", shell.NoEcho())
		})
		sh.Cmd("echo continued", shell.NoEcho())
	})
	out, code := runBash(t, text)
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
}

func TestRender_ColoredEcho(t *testing.T) {
	text := render(t, shell.Options{}, func(sh *shell.Script) {
		sh.Echo("Installing Pods", shell.WithColor(shell.Yellow))
	})
	out, code := runBash(t, text)
	require.Equal(t, 0, code)
	assert.Equal(t, "\x1b[33;1mInstalling Pods\x1b[0m\n", out)
}

func TestRender_ExportNoEchoStillAssigns(t *testing.T) {
	text := render(t, shell.Options{}, func(sh *shell.Script) {
		sh.Export("SECRET", "s3cr3t value", shell.NoEcho())
		sh.Cmd(`printf '%s' "$SECRET"`, shell.NoEcho())
	})
	out, code := runBash(t, text)
	require.Equal(t, 0, code)
	assert.Equal(t, "s3cr3t value", out)
	assert.NotContains(t, text, "$ export SECRET")
}

func TestRender_RetryMessagesHideSilentCommands(t *testing.T) {
	text := render(t, shell.Options{Retry: shell.RetryPolicy{Attempts: 2}}, func(sh *shell.Script) {
		sh.Cmd("test -z 'token=S3CRET'", shell.NoEcho(), shell.WithRetry())
	})
	assert.Contains(t, text, "_bs_retry 'test -z '\\''token=S3CRET'\\''' '[secure]'\n")

	out, code := runBash(t, "exec 2>&1\n"+text)
	assert.Equal(t, 1, code)
	assert.NotContains(t, out, "S3CRET")
	assert.Contains(t, out, `The command "[secure]" failed. Retrying, 2 of 2.`)
	assert.Contains(t, out, `The command "[secure]" failed 2 times.`)
}

func TestRender_RetryMessagesNameEchoedCommands(t *testing.T) {
	text := render(t, shell.Options{Retry: shell.RetryPolicy{Attempts: 2}}, func(sh *shell.Script) {
		sh.Cmd("test -n ''", shell.WithRetry())
	})

	out, code := runBash(t, "exec 2>&1\n"+text)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, `The command "test -n ''" failed 2 times.`)
}

func TestRender_AllowFailureRetriesThenContinues(t *testing.T) {
	dir := t.TempDir()
	counter := dir + "/count"
	command := fmt.Sprintf(`n=$(cat %[1]s 2>/dev/null || echo 0); echo $((n+1)) > %[1]s; exit 4`, counter)

	text := render(t, shell.Options{Retry: shell.RetryPolicy{Attempts: 3}}, func(sh *shell.Script) {
		sh.Cmd("("+command+")", shell.WithRetry(), shell.AllowFailure(), shell.NoEcho())
		sh.Cmd("echo continued", shell.NoEcho())
	})
	assert.Contains(t, text, "' '[secure]' || true\n")

	out, code := runBash(t, text)
	assert.Equal(t, 0, code)
	assert.Equal(t, "continued\n", out)

	attempts, _ := runBash(t, "cat "+counter)
	assert.Equal(t, "3\n", attempts)
}

func TestRender_EchoPrintsBackslashesLiterally(t *testing.T) {
	for _, c := range []shell.Color{shell.NoColor, shell.Green} {
		text := render(t, shell.Options{}, func(sh *shell.Script) {
			sh.Echo(`path C:\new\cfg done 100%`, shell.WithColor(c))
		})
		out, code := runBash(t, text)
		assert.Equal(t, 0, code)
		want := `path C:\new\cfg done 100%` + "\n"
		if c != shell.NoColor {
			want = "\x1b[32;1m" + `path C:\new\cfg done 100%` + "\x1b[0m\n"
		}
		assert.Equal(t, want, out)
	}
}
