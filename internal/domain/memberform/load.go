package memberform

import (
	"fmt"
	"os"

	"payrolldocs/assets"
	"payrolldocs/internal/formfill"
)

// Load builds a Service from optional layout and template files. Without a
// layout file the embedded one is used; without a template a blank form is
// generated from the layout.
func Load(layoutPath, templatePath string) (*Service, error) {
	layoutData := assets.MemberFormLayout
	if layoutPath != "" {
		data, err := os.ReadFile(layoutPath)
		if err != nil {
			return nil, fmt.Errorf("read member form layout: %w", err)
		}
		layoutData = data
	}
	layout, err := formfill.ParseLayout(layoutData)
	if err != nil {
		return nil, err
	}

	var template []byte
	if templatePath != "" {
		template, err = os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("read member form template: %w", err)
		}
	} else {
		template, err = formfill.BlankTemplate(layout)
		if err != nil {
			return nil, err
		}
	}
	return NewService(formfill.NewFiller(layout), template), nil
}
