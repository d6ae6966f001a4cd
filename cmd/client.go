package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"huski/handler/auth"
	"huski/pkg/id"
	"huski/pkg/resthttp"

	"github.com/spf13/cobra"
)

var _client struct {
	api string
	key string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&_client.api, "api", "http://localhost:9000/api", "huski api endpoint for the ops commands")
	rootCmd.PersistentFlags().StringVar(&_client.key, "key", "", "hex private key signing the ops commands, default is $HUSKI_KEY")
}

func signingKey() string {
	if _client.key != "" {
		return _client.key
	}

	return os.Getenv("HUSKI_KEY")
}

// call sends one api request and prints the data of the response,
// requests are signed when a key is given
func call(cmd *cobra.Command, method, path string, body interface{}) error {
	ctx := cmd.Context()
	request := resthttp.WithRequestID(ctx, id.GenTraceID())

	endpoint := strings.TrimSuffix(_client.api, "/") + path
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}

	var data []byte
	if body != nil {
		if data, err = json.Marshal(body); err != nil {
			return err
		}
	}

	if k := signingKey(); k != "" {
		key, err := auth.ParseKey(k)
		if err != nil {
			return fmt.Errorf("parse key: %w", err)
		}

		header, err := auth.Sign(key, method, u.RequestURI(), data, time.Now())
		if err != nil {
			return err
		}

		for k := range header {
			request = request.SetHeader(k, header.Get(k))
		}
	}

	var reqBody interface{}
	if data != nil {
		reqBody = data
	}

	var resp struct {
		Data json.RawMessage `json:"data"`
	}

	if _, err := resthttp.Execute(request, method, endpoint, reqBody, &resp); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, resp.Data, "", "  "); err != nil {
		cmd.Println(string(resp.Data))
		return nil
	}

	cmd.Println(out.String())
	return nil
}
