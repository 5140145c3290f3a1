package catalog

// stub is the header-only body used for most generated modules.
func stub(name string) string {
	return "# " + name + "\n"
}

const readmeStub = `# {{ cookiecutter.repo_name }}

{{ cookiecutter.project_description }}

## Getting started

    poetry install
    make dev-up
`

const pyprojectStub = `# pyproject.toml
[project]
name = "{{ cookiecutter.package_name }}"
description = "{{ cookiecutter.project_description }}"
`

const makefileStub = `# Makefile
dev-up:
	docker compose -f docker/compose.yaml up -d
`

const gitignoreStub = `# .gitignore
__pycache__/
.venv/
.env
`

const runStub = `# App entry point
import uvicorn

from {{ cookiecutter.package_name }}.api.app import app

if __name__ == "__main__":
    uvicorn.run(app, host="0.0.0.0", port=8000)
`

const healthRouterStub = `# health_router.py
from fastapi import APIRouter

router = APIRouter()


@router.get("/health")
def health():
    return {"status": "ok"}
`

const updateFromTemplateStub = `# Update from Template
import logging
import subprocess
import sys


def update_template():
    logging.basicConfig(level=logging.INFO)
    try:
        subprocess.run(["git", "pull"], check=True)
    except subprocess.CalledProcessError as e:
        logging.error(f"Failed to update template: {e}")
        sys.exit(1)


if __name__ == "__main__":
    update_template()
`

// reportHTMLStub matches CopyWithoutRender; report_title is filled in by
// the browser-side template, not by the scaffold.
const reportHTMLStub = `<!doctype html>
<html>
  <body>
    <h1>{{ cookiecutter.report_title }}</h1>
  </body>
</html>
`
