package plugins

import (
	"context"
	"fmt"

	"github.com/ortelius/griffon/model"
	"github.com/ortelius/griffon/util"
)

// PurlPlugin breaks package URLs into their parts
type PurlPlugin struct{}

// Name implements Plugin
func (PurlPlugin) Name() string { return "purl" }

// Description implements Plugin
func (PurlPlugin) Description() string {
	return "Parse and normalise package URLs"
}

// Run describes every purl given as an argument
func (PurlPlugin) Run(_ context.Context, args []string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: at least one purl is required", ErrInvalidArgs)
	}

	out := make([]*model.PURL, 0, len(args))
	for _, arg := range args {
		p, err := util.DescribePURL(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
		out = append(out, p)
	}
	return out, nil
}
