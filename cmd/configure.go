package cmd

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/priyxstudio/pathway/config"
)

var configureArgs struct {
	values        []string
	generateToken bool
}

func newConfigureCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "configure",
		Short: "Writes values into the configuration file, keeping existing comments intact.",
		Example: "  pathway configure --set api.port=9090 --set database.driver=postgres\n" +
			"  pathway configure --generate-token",
		PreRun: func(cmd *cobra.Command, args []string) {
			log.SetHandler(cli.Default)
		},
		Run: configureCmdRun,
	}

	command.Flags().StringArrayVar(&configureArgs.values, "set", nil, "a key=value pair to write, keys are dot separated (e.g. api.port=9090)")
	command.Flags().BoolVar(&configureArgs.generateToken, "generate-token", false, "write a new random token signing secret")

	return command
}

func configureCmdRun(*cobra.Command, []string) {
	if err := applyConfiguration(configPath, configureArgs.values, configureArgs.generateToken); err != nil {
		log.WithField("error", err).Fatal("failed to update configuration")
	}
	log.WithField("path", configPath).Info("configuration file updated")
}

// applyConfiguration loads the file at path, or the defaults when it does not
// exist yet, applies every key=value pair and optionally a fresh token
// secret, then writes the result back. Nothing is written unless the final
// configuration passes validation.
func applyConfiguration(path string, values []string, generateToken bool) error {
	if len(values) == 0 && !generateToken {
		return errors.New("nothing to configure, pass --set key=value or --generate-token")
	}

	raw, err := config.ReadRawConfig(path)
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		return err
	}
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return errors.Errorf("values must be passed as key=value, got %q", v)
		}
		if raw, err = config.SetValue(raw, key, value); err != nil {
			return err
		}
	}

	c, err := config.NewAtPath(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "configuration would not be valid")
	}
	config.Set(c)

	if generateToken {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		config.Update(func(c *config.Configuration) {
			c.Token = secret
		})
	}

	c = config.Get()
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create configuration directory")
	}
	return config.WriteToDisk(c)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.WithStack(err)
	}
	return hex.EncodeToString(b), nil
}
