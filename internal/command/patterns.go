package command

// destructiveSources indicate irreversible data loss or device-level damage.
var destructiveSources = []string{
	`rm\s+-rf`,
	`rm\s+-r`,
	`sudo\s+rm`,
	`rm\s+/`,
	`del\s+`,
	`rmdir`,
	`format\s+`,
	`fdisk`,
	`dd\s+if=`,
	`sudo\s+dd`,
	`>\s*/dev/`,
	`sudo\s+chmod\s+777`,
	`chmod\s+-R\s+777`,
	`sudo\s+chown\s+-R`,
	`curl.*\|\s*bash`,
	`wget.*\|\s*bash`,
	`mkfs\.`,
	`format\s+c:`,
	`del\s+/s\s+/q`,
	`shutdown`,
	`reboot`,
	`halt`,
}

// systemLevelSources need elevated privileges or touch system-wide configuration.
var systemLevelSources = []string{
	`sudo\s+`,
	`su\s+`,
	`doas\s+`,
	`systemctl`,
	`/etc/`,
	`/var/`,
	`/usr/`,
	`/bin/`,
	`/sbin/`,
	`mount\s+`,
	`umount\s+`,
	`iptables`,
	`firewall`,
	`passwd`,
	`useradd`,
	`userdel`,
}

// Compiled once at start-up. A bad fixed pattern panics here.
var (
	destructivePatterns = MustPatternSet("destructive", destructiveSources)
	systemLevelPatterns = MustPatternSet("system-level", systemLevelSources)
)

// DestructivePatterns returns a copy of the built-in destructive pattern sources.
func DestructivePatterns() []string {
	return append([]string(nil), destructiveSources...)
}

// SystemLevelPatterns returns a copy of the built-in system-level pattern sources.
func SystemLevelPatterns() []string {
	return append([]string(nil), systemLevelSources...)
}
