package gen

import "os/exec"

// formatters maps each language to the external formatter invoked when
// TryFormatCode is set. Formatting is strictly best effort: a formatter
// that is absent from PATH or exits nonzero is ignored.
var formatters = map[TargetLanguage][]string{
	Kotlin: {"ktlint", "-F"},
	Swift:  {"swiftformat"},
	Python: {"yapf", "-i"},
}

func formatFile(lang TargetLanguage, path string) {
	args, ok := formatters[lang]
	if !ok {
		return
	}
	bin, err := exec.LookPath(args[0])
	if err != nil {
		return
	}
	cmd := exec.Command(bin, append(args[1:], path)...)
	_ = cmd.Run()
}
