package setup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"acfileserver/internal/config"
	"acfileserver/internal/model"
)

// artifact records one filesystem object created by the current run, so
// rollback knows exactly what to remove and never touches anything that
// existed beforehand.
type artifact struct {
	path string
	dir  bool
}

// Result reports what a provisioning run did. Paths that already existed
// end up in Skipped; freshly created ones in Created.
type Result struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// Provisioner runs the ordered provisioning steps for one directory tree.
type Provisioner struct {
	filesDir     string
	stateDir     string
	envPath      string
	templatePath string

	// created accumulates this run's artifacts in creation order;
	// rollback walks it backwards.
	created []artifact

	// verify runs after all artifacts exist. The default parses the
	// active .env; a failure here still triggers a full rollback, the
	// same way a failed dependency install undoes a fresh environment.
	verify func() error
}

// New creates a Provisioner for the working directory dir. filesDir and
// stateDir are the resolved (absolute) target directories from the
// configuration layer.
func New(dir, filesDir, stateDir string) *Provisioner {
	p := &Provisioner{
		filesDir:     filesDir,
		stateDir:     stateDir,
		envPath:      filepath.Join(dir, config.EnvFileName),
		templatePath: filepath.Join(dir, config.EnvTemplateName),
	}
	p.verify = p.verifyEnvFile
	return p
}

// Run executes the provisioning steps in order:
//
//  1. Create the files directory if absent.
//  2. Create the state directory if absent.
//  3. Copy .env.example to .env if .env is absent (missing template fatal).
//  4. Verify the resulting .env parses.
//
// Any failure rolls back everything this run created and returns a
// CLIError with ExitSetupFailed.
func (p *Provisioner) Run() (*Result, error) {
	res := &Result{}

	if err := p.ensureDir(p.filesDir, res); err != nil {
		return nil, p.fail("failed to create files directory", err)
	}
	if err := p.ensureDir(p.stateDir, res); err != nil {
		return nil, p.fail("failed to create state directory", err)
	}
	if err := p.ensureEnvFile(res); err != nil {
		return nil, p.fail("failed to provision environment file", err)
	}
	if err := p.verify(); err != nil {
		return nil, p.fail("provisioned environment failed verification", err)
	}

	return res, nil
}

// ensureDir creates path if it does not exist. An existing directory is
// recorded as skipped and never re-created or modified; an existing
// non-directory at the path is an error.
func (p *Provisioner) ensureDir(path string, res *Result) error {
	st, err := os.Stat(path)
	switch {
	case err == nil:
		if !st.IsDir() {
			return fmt.Errorf("%s exists but is not a directory", path)
		}
		res.Skipped = append(res.Skipped, path)
		return nil
	case os.IsNotExist(err):
		if mkErr := os.Mkdir(path, 0o755); mkErr != nil {
			return mkErr
		}
		p.created = append(p.created, artifact{path: path, dir: true})
		res.Created = append(res.Created, path)
		return nil
	default:
		return err
	}
}

// ensureEnvFile copies the template to the active .env when .env is
// absent. An existing .env is left exactly as it is, even if the template
// is newer. Operator edits always win.
func (p *Provisioner) ensureEnvFile(res *Result) error {
	if _, err := os.Stat(p.envPath); err == nil {
		res.Skipped = append(res.Skipped, p.envPath)
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if _, err := os.Stat(p.templatePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("template %s not found and %s does not exist", p.templatePath, p.envPath)
		}
		return err
	}

	if err := copyFile(p.templatePath, p.envPath); err != nil {
		return err
	}
	p.created = append(p.created, artifact{path: p.envPath})
	res.Created = append(res.Created, p.envPath)
	return nil
}

// verifyEnvFile parses the active .env so a broken template is caught
// while rollback is still possible. No .env at all is fine here; it
// means one already existed before this run or none is needed.
func (p *Provisioner) verifyEnvFile() error {
	if _, err := os.Stat(p.envPath); os.IsNotExist(err) {
		return nil
	}
	if _, err := godotenv.Read(p.envPath); err != nil {
		return fmt.Errorf("parsing %s: %w", p.envPath, err)
	}
	return nil
}

// fail rolls back this run's artifacts in reverse creation order and
// wraps the step error with the setup exit code. Rollback is best-effort:
// a file that refuses to delete must not mask the original failure.
func (p *Provisioner) fail(message string, err error) error {
	for i := len(p.created) - 1; i >= 0; i-- {
		a := p.created[i]
		if a.dir {
			_ = os.RemoveAll(a.path)
		} else {
			_ = os.Remove(a.path)
		}
	}
	p.created = nil
	return model.WrapCLIError(model.ExitSetupFailed, message, err)
}

// copyFile copies src to dst with restrictive permissions, since the .env file
// holds credentials and should not be group/world readable.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
