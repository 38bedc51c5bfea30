// SPDX-License-Identifier: Apache-2.0
package init

// RepoConfigTemplate renders intake.yaml. Secrets are never written here.
const RepoConfigTemplate = `# yaml-language-server: $schema=` + SchemaPath + `
# Intake deployment configuration.
# Secrets (identity.token-secret, store.redis.url) belong in
# ~/.config/intake/config.yaml: intake config set --global <key> <value>
store:
  backend: {{.StoreBackend}}
{{- if or .NATSURL .StoreDir}}
  nats:
{{- if .NATSURL}}
    url: {{.NATSURL}}
{{- end}}
{{- if .StoreDir}}
    dir: {{.StoreDir}}
{{- end}}
{{- end}}
identity:
  verify-url: {{.VerifyURL}}
  hash-cost: {{.HashCost}}
  token-ttl: {{.TokenTTL}}
`

// GitignoreTemplate keeps local store data out of version control
const GitignoreTemplate = `# Intake
{{- if .StoreDir}}
{{.StoreDir}}/
{{- end}}
*.log
`
