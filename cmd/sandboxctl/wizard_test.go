package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunWizardDefaultsToBalancedPython(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("\n\n\n"))
	var out bytes.Buffer

	err := runWizard(in, &out)

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "runtime:       python")
	assert.Contains(t, out.String(), "fuel budget:   5000000")
}

func TestRunWizardHonorsJavaScriptAndConservativeChoices(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("2\n1\n\n"))
	var out bytes.Buffer

	err := runWizard(in, &out)

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "runtime:       javascript")
	assert.Contains(t, out.String(), "fuel budget:   1000000")
}
